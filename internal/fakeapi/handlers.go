package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/communitybridge/cinco-client/internal/types"
)

func (s *Server) trustedKey(w http.ResponseWriter, r *http.Request) {
	lfID := mux.Vars(r)["lfId"]
	s.mu.Lock()
	k, ok := s.principals[lfID]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown principal "+lfID)
		return
	}
	s.writeJSON(w, http.StatusOK, types.TrustedKey{KeyID: k.KeyID, Secret: k.Secret})
}

// ------------------------------
// Users
// ------------------------------

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in types.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.LfID == "" || in.Email == "" {
		s.writeError(w, http.StatusBadRequest, "lfId and email are required")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.LfID == in.LfID {
			s.mu.Unlock()
			s.writeError(w, http.StatusConflict, "user "+in.LfID+" already exists")
			return
		}
	}
	now := s.cfg.Now().UTC()
	u := types.User{
		ID:        uuid.NewString(),
		LfID:      in.LfID,
		Email:     in.Email,
		Name:      in.Name,
		Roles:     in.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	s.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	var in types.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	u, ok := s.users[id]
	if ok {
		if in.Email != "" {
			u.Email = in.Email
		}
		if in.Name != "" {
			u.Name = in.Name
		}
		if in.Roles != nil {
			u.Roles = in.Roles
		}
		if in.Calendar != "" {
			u.Calendar = in.Calendar
		}
		u.UpdatedAt = s.cfg.Now().UTC()
		s.users[id] = u
	}
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	s.mu.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) userProjects(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	s.mu.Lock()
	u, ok := s.users[id]
	var out []types.Project
	if ok {
		for _, p := range s.sortedProjects() {
			for _, m := range p.Managers {
				if m == u.LfID || m == u.ID {
					out = append(out, p)
					break
				}
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	s.writeJSON(w, http.StatusOK, types.ListProjectsResponse{Projects: out, Count: len(out)})
}

// ------------------------------
// Projects
// ------------------------------

// sortedProjects must be called with s.mu held.
func (s *Server) sortedProjects() []types.Project {
	out := make([]types.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.sortedProjects()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, types.ListProjectsResponse{Projects: out, Count: len(out)})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in types.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p := types.Project{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		Type:           in.Type,
		Status:         "active",
		URL:            in.URL,
		Managers:       in.Managers,
		OrganizationID: in.OrganizationID,
		CreatedAt:      s.cfg.Now().UTC(),
	}
	s.mu.Lock()
	s.projects[p.ID] = p
	s.mu.Unlock()

	if s.cfg.AsyncCreate {
		s.accepted(w, NotStarted(), Running(), Done(p))
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["projectId"]
	s.mu.Lock()
	p, ok := s.projects[id]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "project "+id+" not found")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["projectId"]
	s.mu.Lock()
	_, ok := s.projects[id]
	delete(s.projects, id)
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "project "+id+" not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------
// Organizations
// ------------------------------

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["orgId"]
	s.mu.Lock()
	o, ok := s.orgs[id]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "organization "+id+" not found")
		return
	}
	s.writeJSON(w, http.StatusOK, o)
}

func (s *Server) searchOrganizations(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	s.mu.Lock()
	out := make([]types.Organization, 0)
	for _, o := range s.orgs {
		if strings.Contains(strings.ToLower(o.Name), name) {
			out = append(out, o)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.writeJSON(w, http.StatusOK, types.SearchOrganizationsResponse{Organizations: out, Count: len(out)})
}
