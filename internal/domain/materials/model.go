package materials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

var (
	ErrNotFound      = errors.New("material not found")
	ErrDuplicateName = errors.New("material with this name already exists")
	ErrInvalid       = errors.New("invalid material")
	// ErrHasHistory: по материалу уже были движения, удалять нельзя.
	ErrHasHistory = errors.New("material has stock history")
)

// Material.TotalQuantity всегда считается как сумма партий, в таблице не хранится.
type Material struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Unit          vocab.Unit `json:"unit"`
	MinQuantity   float64    `json:"min_quantity"`
	IsNarcotic    bool       `json:"is_narcotic"`
	TotalQuantity float64    `json:"total_quantity"`
}

type Batch struct {
	ID              int64      `json:"id"`
	MaterialID      int64      `json:"material_id"`
	InitialQuantity float64    `json:"initial_quantity"`
	CurrentQuantity float64    `json:"current_quantity"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Material        *Material  `json:"material,omitempty"`
}

type Input struct {
	Name            string     `json:"name"`
	Unit            vocab.Unit `json:"unit"`
	MinQuantity     float64    `json:"min_quantity"`
	IsNarcotic      bool       `json:"is_narcotic"`
	InitialQuantity float64    `json:"initial_quantity"`
}

// Normalize trims the input and reports the first rule it breaks.
func (in *Input) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !in.Unit.Valid():
		return fmt.Errorf("%w: unknown unit %q", ErrInvalid, in.Unit)
	case in.MinQuantity < 0:
		return fmt.Errorf("%w: min_quantity must not be negative", ErrInvalid)
	case in.InitialQuantity < 0:
		return fmt.Errorf("%w: initial_quantity must not be negative", ErrInvalid)
	}
	if err := vocab.CheckQuantityFloat(in.MinQuantity); err != nil {
		return fmt.Errorf("%w: min_quantity: %v", ErrInvalid, err)
	}
	if err := vocab.CheckQuantityFloat(in.InitialQuantity); err != nil {
		return fmt.Errorf("%w: initial_quantity: %v", ErrInvalid, err)
	}
	return nil
}

// ListParams mirrors the ?q=&skip=&limit= query of the listing endpoint.
type ListParams struct {
	Query string
	Skip  int
	Limit int
}

func (p ListParams) Window() (offset, limit int) {
	offset, limit = p.Skip, p.Limit
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return offset, limit
}
