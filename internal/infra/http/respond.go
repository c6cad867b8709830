package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Spok95/clinic-stock/internal/domain/inventory"
	"github.com/Spok95/clinic-stock/internal/domain/materials"
	"github.com/Spok95/clinic-stock/internal/domain/requests"
	"github.com/Spok95/clinic-stock/internal/domain/users"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", r.PathValue("id"))
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// statusOf maps domain errors to HTTP codes; 0 means unexpected.
func statusOf(err error) int {
	switch {
	case errors.Is(err, materials.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, requests.ErrNotFound),
		errors.Is(err, inventory.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, materials.ErrDuplicateName),
		errors.Is(err, users.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrInsufficientQuantity),
		errors.Is(err, materials.ErrHasHistory),
		errors.Is(err, requests.ErrNotPending),
		errors.Is(err, requests.ErrUnitMismatch):
		return http.StatusConflict
	case errors.Is(err, materials.ErrInvalid),
		errors.Is(err, users.ErrInvalid),
		errors.Is(err, requests.ErrInvalid),
		errors.Is(err, requests.ErrEmpty),
		errors.Is(err, inventory.ErrZeroDelta),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrBatchMismatch),
		errors.Is(err, inventory.ErrComplianceRequired),
		errors.Is(err, inventory.ErrLogOnPlain):
		return http.StatusUnprocessableEntity
	}
	return 0
}

// writeError renders err as {"detail": ...}. Unknown errors are logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if code := statusOf(err); code != 0 {
		writeDetail(w, code, err.Error())
		return
	}
	s.d.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeDetail(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) audit(r *http.Request, action, details string) {
	u := currentUser(r.Context())
	if u == nil {
		return
	}
	if err := s.d.Users.LogActivity(r.Context(), u.ID, action, details); err != nil {
		s.d.Log.Warn("activity log failed", "user_id", u.ID, "action", action, "err", err)
	}
}
