package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

type memStore struct{ token string }

func (m *memStore) Load(context.Context) (string, error)     { return m.token, nil }
func (m *memStore) Save(_ context.Context, tok string) error { m.token = tok; return nil }
func (m *memStore) Clear(context.Context) error              { m.token = ""; return nil }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeAPI accepts "good-token" only.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"good-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(client.User{ID: 3, Email: "nurse@clinic.local", Role: vocab.RoleStaff})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPersistsTokenAndLoadsUser(t *testing.T) {
	srv := fakeAPI(t)
	store := &memStore{}
	s := New(discard(), client.New(srv.URL, nil), store)

	if err := s.Login(context.Background(), "nurse@clinic.local", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.State() != Authenticated {
		t.Fatalf("state = %s", s.State())
	}
	if store.token != "good-token" {
		t.Fatalf("persisted token = %q", store.token)
	}
	if u := s.User(); u == nil || u.ID != 3 {
		t.Fatalf("user = %+v", u)
	}
	if !s.Can(vocab.ActionDispense) || s.Can(vocab.ActionApproveRequest) {
		t.Fatal("capabilities do not follow the staff role")
	}
}

func TestLoginRejected(t *testing.T) {
	srv := fakeAPI(t)
	store := &memStore{}
	s := New(discard(), client.New(srv.URL, nil), store)

	err := s.Login(context.Background(), "nurse@clinic.local", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if s.State() != Anonymous || store.token != "" {
		t.Fatalf("state = %s, token = %q", s.State(), store.token)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	s := New(discard(), client.New("http://unused.invalid", nil), &memStore{})
	var ve *apperr.ValidationError
	if err := s.Login(context.Background(), " ", "pw"); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestRestore(t *testing.T) {
	srv := fakeAPI(t)

	t.Run("valid token", func(t *testing.T) {
		s := New(discard(), client.New(srv.URL, nil), &memStore{token: "good-token"})
		ok, err := s.Restore(context.Background())
		if err != nil || !ok {
			t.Fatalf("Restore = %v, %v", ok, err)
		}
		if s.State() != Authenticated {
			t.Fatalf("state = %s", s.State())
		}
	})

	t.Run("stale token is cleared", func(t *testing.T) {
		store := &memStore{token: "stale"}
		s := New(discard(), client.New(srv.URL, nil), store)
		ok, err := s.Restore(context.Background())
		if err != nil || ok {
			t.Fatalf("Restore = %v, %v", ok, err)
		}
		if store.token != "" || s.State() != Anonymous {
			t.Fatalf("token = %q, state = %s", store.token, s.State())
		}
	})

	t.Run("unreachable server keeps token", func(t *testing.T) {
		store := &memStore{token: "good-token"}
		s := New(discard(), client.New("http://127.0.0.1:1", nil), store)
		ok, err := s.Restore(context.Background())
		var nf *apperr.NetworkFailure
		if ok || !errors.As(err, &nf) {
			t.Fatalf("Restore = %v, %v; want NetworkFailure", ok, err)
		}
		if store.token != "good-token" {
			t.Fatalf("token after failed restore = %q", store.token)
		}
		if s.State() != Anonymous {
			t.Fatalf("state = %s", s.State())
		}
	})

	t.Run("server error keeps token", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer down.Close()

		store := &memStore{token: "good-token"}
		s := New(discard(), client.New(down.URL, nil), store)
		ok, err := s.Restore(context.Background())
		var sr *apperr.ServerRejection
		if ok || !errors.As(err, &sr) || sr.Status != http.StatusServiceUnavailable {
			t.Fatalf("Restore = %v, %v; want 503 rejection", ok, err)
		}
		if store.token != "good-token" {
			t.Fatalf("token after failed restore = %q", store.token)
		}

		// сервер поднялся: тот же токен снова действует
		s2 := New(discard(), client.New(srv.URL, nil), store)
		if ok, err := s2.Restore(context.Background()); err != nil || !ok {
			t.Fatalf("second Restore = %v, %v", ok, err)
		}
	})

	t.Run("nothing persisted", func(t *testing.T) {
		s := New(discard(), client.New(srv.URL, nil), &memStore{})
		ok, err := s.Restore(context.Background())
		if err != nil || ok {
			t.Fatalf("Restore = %v, %v", ok, err)
		}
	})
}

func TestUnauthorizedAnywhereClearsSession(t *testing.T) {
	srv := fakeAPI(t)
	store := &memStore{}
	s := New(discard(), client.New(srv.URL, nil), store)
	if err := s.Login(context.Background(), "nurse@clinic.local", "pw"); err != nil {
		t.Fatal(err)
	}

	// the server revokes the token: any call now returns 401
	s.token = "revoked"
	if _, err := s.Client().Me(context.Background()); !errors.Is(err, apperr.ErrAuthExpired) {
		t.Fatalf("err = %v", err)
	}
	if s.State() != Anonymous || store.token != "" {
		t.Fatalf("state = %s, token = %q", s.State(), store.token)
	}
}

func TestLogout(t *testing.T) {
	srv := fakeAPI(t)
	store := &memStore{}
	s := New(discard(), client.New(srv.URL, nil), store)
	if err := s.Login(context.Background(), "nurse@clinic.local", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.State() != Anonymous || store.token != "" || s.Can(vocab.ActionViewDashboard) {
		t.Fatal("logout did not clear the session")
	}
}
