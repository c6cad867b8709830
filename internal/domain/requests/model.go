package requests

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

var (
	ErrNotFound   = errors.New("request not found")
	ErrNotPending = errors.New("request is not pending")
	ErrEmpty      = errors.New("request has no items")
	ErrInvalid    = errors.New("invalid request item")
	// ErrUnitMismatch: позиция ссылается на существующий материал с другой единицей.
	ErrUnitMismatch = errors.New("unit does not match the existing material")
)

type Item struct {
	MaterialName   string     `json:"material_name"`
	Quantity       float64    `json:"quantity"`
	Unit           vocab.Unit `json:"unit"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

type Request struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Items       []Item    `json:"items"`
}

func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return ErrEmpty
	}
	for i := range items {
		it := &items[i]
		it.MaterialName = strings.TrimSpace(it.MaterialName)
		switch {
		case it.MaterialName == "":
			return fmt.Errorf("%w: line %d: material_name is required", ErrInvalid, i+1)
		case it.Quantity <= 0:
			return fmt.Errorf("%w: line %d: quantity must be greater than zero", ErrInvalid, i+1)
		case !it.Unit.Valid():
			return fmt.Errorf("%w: line %d: unknown unit %q", ErrInvalid, i+1, it.Unit)
		}
		if err := vocab.CheckQuantityFloat(it.Quantity); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalid, i+1, err)
		}
	}
	return nil
}
