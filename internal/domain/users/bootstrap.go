package users

import (
	"context"
	"fmt"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

// Seeder is what EnsureAdmin needs from Repo.
type Seeder interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, c Create, hashedPassword string) (*User, error)
}

// EnsureAdmin создаёт первого администратора, пока таблица пользователей пуста.
// Returns nil when there is nothing to do.
func EnsureAdmin(ctx context.Context, s Seeder, email, password string, hash func(string) (string, error)) (*User, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: no users yet and no bootstrap admin configured", ErrInvalid)
	}
	c := Create{Email: email, Password: password, FullName: "Администратор", Role: vocab.RoleAdmin}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	h, err := hash(c.Password)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, c, h)
}
