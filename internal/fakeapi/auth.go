package fakeapi

import (
	"bytes"
	"crypto/subtle"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/communitybridge/cinco-client/internal/signature"
)

// verifySignature rejects requests whose CINCO signature does not verify
// against a known key.
func (s *Server) verifySignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "read body")
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		keyID, _, err := signature.ParseAuthorization(r.Header.Get(signature.AuthorizationKey))
		if err != nil {
			s.unauthorized(w, r, err)
			return
		}
		key, ok := s.lookupKey(keyID)
		if !ok {
			s.unauthorized(w, r, signature.ErrSignatureMismatch)
			return
		}
		if err := signature.Verify(key, r.Method, r.URL.RequestURI(), r.Header, body, s.cfg.Now(), s.cfg.MaxSkew); err != nil {
			s.unauthorized(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	s.cfg.Log.Debug().Err(err).Str("method", r.Method).Str("uri", r.URL.RequestURI()).Msg("signature rejected")
	s.writeError(w, http.StatusUnauthorized, err.Error())
}

// basicAuth guards the trusted key endpoint with the integration credential.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || s.cfg.TrustedUser == "" ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.TrustedUser)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.TrustedPassword)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="cinco"`)
			s.writeError(w, http.StatusUnauthorized, "invalid trusted credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverer intercepts panics from downstream handlers, logs details, and returns HTTP 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.cfg.Log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				s.writeError(w, http.StatusInternalServerError, "panic")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
