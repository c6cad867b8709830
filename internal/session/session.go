// Package session owns the authenticated identity of one UI principal and the
// lifecycle of its bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

// TokenKey is the well-known key the token is persisted under.
const TokenKey = "token"

// TokenStore is client-local storage for the token.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

type Session struct {
	log   *slog.Logger
	store TokenStore
	api   *client.Client

	token string
	user  *client.User
}

// New binds a session to api. Calls made through s.Client() carry the
// session's token and clear the session on 401.
func New(log *slog.Logger, api *client.Client, store TokenStore) *Session {
	s := &Session{log: log, store: store}
	s.api = api.WithCredentials(s)
	return s
}

func (s *Session) Client() *client.Client { return s.api }

func (s *Session) State() State {
	if s.token != "" && s.user != nil {
		return Authenticated
	}
	return Anonymous
}

// User returns the current identity, nil when anonymous.
func (s *Session) User() *client.User {
	if s.State() != Authenticated {
		return nil
	}
	u := *s.user
	return &u
}

// Token implements client.Credentials.
func (s *Session) Token() string { return s.token }

// Invalidate implements client.Credentials: the server refused the token.
func (s *Session) Invalidate() {
	s.log.Info("session invalidated by server")
	s.reset(context.Background())
}

func (s *Session) Can(a vocab.Action) bool {
	u := s.User()
	return u != nil && u.Role.Can(a)
}

// Login exchanges credentials for a token, persists it and loads the identity.
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Invalid("email", "e-mail is required")
	}
	if password == "" {
		return apperr.Invalid("password", "password is required")
	}

	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return errors.New("login: server returned an empty token")
	}
	s.token = tok.AccessToken
	if err := s.store.Save(ctx, s.token); err != nil {
		s.token = ""
		return fmt.Errorf("persist token: %w", err)
	}

	me, err := s.api.Me(ctx)
	if err != nil {
		s.reset(ctx)
		return err
	}
	s.user = &me
	s.log.Info("logged in", "user_id", me.ID, "role", me.Role)
	return nil
}

// Restore revalidates a persisted token. It reports whether the session is
// authenticated afterwards. Only a 401 clears the stored token; any other
// failure is returned and the token is kept for a later Restore.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	tok, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if tok == "" {
		return false, nil
	}
	s.token = tok
	me, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthExpired) {
			// 401: Invalidate has already cleared the store
			return false, nil
		}
		// сервер недоступен: токен остаётся в хранилище до следующей попытки
		s.token = ""
		return false, err
	}
	s.user = &me
	return true, nil
}

func (s *Session) Logout(ctx context.Context) error {
	if u := s.User(); u != nil {
		s.log.Info("logged out", "user_id", u.ID)
	}
	return s.reset(ctx)
}

func (s *Session) reset(ctx context.Context) error {
	s.token = ""
	s.user = nil
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error("clear token failed", "err", err)
		return err
	}
	return nil
}
