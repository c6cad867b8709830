package users

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalid        = errors.New("invalid user")
)

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Role           vocab.Role `json:"role"`
	IsActive       bool       `json:"is_active"`
	HashedPassword string     `json:"-"`
	CreatedAt      time.Time  `json:"-"`
}

type Create struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     vocab.Role `json:"role"`
}

func (c *Create) Normalize() error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.FullName = strings.TrimSpace(c.FullName)
	if c.Role == "" {
		c.Role = vocab.RoleStaff
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: bad email %q", ErrInvalid, c.Email)
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	if !c.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, c.Role)
	}
	return nil
}

// Activity is one audit line written by the service after a mutating call.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
