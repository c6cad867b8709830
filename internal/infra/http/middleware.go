package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/clinic-stock/internal/domain/users"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

type ctxKey int

const userKey ctxKey = iota

func currentUser(ctx context.Context) *users.User {
	u, _ := ctx.Value(userKey).(*users.User)
	return u
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.d.Metrics.ObserveRequest(route, rec.status, elapsed)
		s.d.Log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// authed resolves the bearer token to an active user.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			unauthorized(w, "Not authenticated")
			return
		}
		p, err := s.d.Tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}
		u, err := s.d.Users.GetByID(r.Context(), p.UserID)
		if errors.Is(err, users.ErrNotFound) || (err == nil && !u.IsActive) {
			unauthorized(w, "Could not validate credentials")
			return
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// guard is authed plus a capability check against the caller's current role.
func (s *Server) guard(action vocab.Action, h http.HandlerFunc) http.Handler {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r.Context()).Role.Can(action) {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		h(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, msg)
}
