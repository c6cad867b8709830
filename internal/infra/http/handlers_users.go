package http

import (
	"errors"
	"net/http"

	"github.com/Spok95/clinic-stock/internal/auth"
	"github.com/Spok95/clinic-stock/internal/domain/users"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// login реализует OAuth2 password flow: форма username/password.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if email == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	u, err := s.d.Users.GetByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		s.writeError(w, r, err)
		return
	}
	if u == nil || !u.IsActive || !auth.CheckPassword(u.HashedPassword, password) {
		s.d.Log.Info("login failed", "email", email)
		unauthorized(w, "Incorrect username or password")
		return
	}

	tok, err := s.d.Tokens.Issue(auth.Principal{UserID: u.ID, Role: u.Role})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.d.Users.LogActivity(r.Context(), u.ID, "login", ""); err != nil {
		s.d.Log.Warn("activity log failed", "user_id", u.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r.Context()))
}

func (s *Server) myActivity(w http.ResponseWriter, r *http.Request) {
	s.activityOf(w, r, currentUser(r.Context()).ID)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	out, err := s.d.Users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := s.d.Users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) userActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, err := s.d.Users.GetByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.activityOf(w, r, id)
}

func (s *Server) activityOf(w http.ResponseWriter, r *http.Request, userID int64) {
	out, err := s.d.Users.Activity(r.Context(), userID, queryInt(r, "limit", 100))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in users.Create
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := in.Normalize(); err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.d.Users.Create(r.Context(), in, hash)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, "create_user", u.Email)
	writeJSON(w, http.StatusOK, u)
}
