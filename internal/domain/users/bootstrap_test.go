package users

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

type seederStub struct {
	count   int64
	created []Create
}

func (s *seederStub) Count(context.Context) (int64, error) { return s.count, nil }

func (s *seederStub) Create(_ context.Context, c Create, hash string) (*User, error) {
	s.created = append(s.created, c)
	return &User{ID: 1, Email: c.Email, Role: c.Role, HashedPassword: hash, IsActive: true}, nil
}

func plainHash(p string) (string, error) { return "h:" + p, nil }

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		s := &seederStub{}
		u, err := EnsureAdmin(ctx, s, " Admin@Clinic.ru ", "secret1", plainHash)
		if err != nil {
			t.Fatal(err)
		}
		if u == nil || u.Role != vocab.RoleAdmin || u.Email != "admin@clinic.ru" || u.HashedPassword != "h:secret1" {
			t.Fatalf("admin = %+v", u)
		}
	})

	t.Run("users exist", func(t *testing.T) {
		s := &seederStub{count: 3}
		u, err := EnsureAdmin(ctx, s, "admin@clinic.ru", "secret1", plainHash)
		if err != nil || u != nil || len(s.created) != 0 {
			t.Fatalf("u=%v err=%v created=%d", u, err, len(s.created))
		}
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := EnsureAdmin(ctx, &seederStub{}, "", "", plainHash)
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("err = %v", err)
		}
	})
}
