// Package fakeapi is an in-memory CINCO backend. It verifies every signed
// request, serves the resources the facade uses and scripts asynchronous
// jobs so callers can exercise the 202 polling path end to end.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/communitybridge/cinco-client/internal/signature"
	"github.com/communitybridge/cinco-client/internal/types"
)

// Config wires a Server.
type Config struct {
	// BasePath is the prefix every route lives under. Defaults to "/".
	BasePath string
	// Keys are the signing keys accepted on signed routes.
	Keys []signature.Key
	// TrustedUser and TrustedPassword guard the trusted key endpoint.
	TrustedUser     string
	TrustedPassword string
	// MaxSkew bounds the Date header distance from Now. Zero disables it.
	MaxSkew time.Duration
	// AsyncCreate makes POST projects answer 202 with a job location.
	AsyncCreate bool
	Now         func() time.Time
	Log         zerolog.Logger
}

// Server is safe for concurrent use.
type Server struct {
	cfg    Config
	base   string
	router *mux.Router

	mu         sync.Mutex
	keys       map[string]signature.Key
	principals map[string]signature.Key // by lfId
	users      map[string]types.User
	projects   map[string]types.Project
	orgs       map[string]types.Organization
	jobs       map[string]*job
}

// New builds a Server with its routes registered.
func New(cfg Config) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	base := "/" + strings.Trim(cfg.BasePath, "/")
	if base != "/" {
		base += "/"
	}
	s := &Server{
		cfg:        cfg,
		base:       base,
		keys:       make(map[string]signature.Key),
		principals: make(map[string]signature.Key),
		users:      make(map[string]types.User),
		projects:   make(map[string]types.Project),
		orgs:       make(map[string]types.Organization),
		jobs:       make(map[string]*job),
	}
	for _, k := range cfg.Keys {
		s.keys[k.KeyID] = k
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// buildRouter wires HTTP routes to handlers.
func (s *Server) buildRouter() *mux.Router {
	root := mux.NewRouter()
	root.Use(s.recoverer)
	api := root
	if s.base != "/" {
		api = root.PathPrefix(strings.TrimSuffix(s.base, "/")).Subrouter()
	}

	// Trusted credential bootstrap uses Basic auth instead of a signature.
	api.Handle("/auth/trusted/cas/{lfId}", s.basicAuth(http.HandlerFunc(s.trustedKey))).Methods("GET")

	signed := api.NewRoute().Subrouter()
	signed.Use(s.verifySignature)

	signed.HandleFunc("/users", s.createUser).Methods("POST")
	signed.HandleFunc("/users/{userId}", s.getUser).Methods("GET")
	signed.HandleFunc("/users/{userId}", s.updateUser).Methods("PUT")
	signed.HandleFunc("/users/{userId}", s.deleteUser).Methods("DELETE")
	signed.HandleFunc("/users/{userId}/projects", s.userProjects).Methods("GET")

	signed.HandleFunc("/projects", s.listProjects).Methods("GET")
	signed.HandleFunc("/projects", s.createProject).Methods("POST")
	signed.HandleFunc("/projects/{projectId}", s.getProject).Methods("GET")
	signed.HandleFunc("/projects/{projectId}", s.deleteProject).Methods("DELETE")

	signed.HandleFunc("/organizations", s.searchOrganizations).Methods("GET")
	signed.HandleFunc("/organizations/{orgId}", s.getOrganization).Methods("GET")

	signed.HandleFunc("/jobs/{jobId}", s.getJob).Methods("GET")
	return root
}

// AddKey accepts k on signed routes.
func (s *Server) AddKey(k signature.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k.KeyID] = k
}

// AddPrincipal registers lfID with the trusted key endpoint and returns the
// key it will hand out. The key is also accepted on signed routes.
func (s *Server) AddPrincipal(lfID string) signature.Key {
	k := signature.Key{KeyID: uuid.NewString(), Secret: uuid.NewString()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[lfID] = k
	s.keys[k.KeyID] = k
	return k
}

// AddOrganization seeds an organization.
func (s *Server) AddOrganization(o types.Organization) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

// AddUser seeds a user and returns it with its assigned id.
func (s *Server) AddUser(u types.User) types.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return u
}

func (s *Server) lookupKey(keyID string) (signature.Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyID]
	return k, ok
}
