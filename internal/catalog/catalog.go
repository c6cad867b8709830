// Package catalog manages material definitions through the REST API.
package catalog

import (
	"context"
	"strings"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

// API is the part of the gateway the catalog needs.
type API interface {
	Materials(ctx context.Context, q string) ([]client.Material, error)
	AllMaterials(ctx context.Context) ([]client.Material, error)
	Material(ctx context.Context, id int64) (client.Material, error)
	CreateMaterial(ctx context.Context, in client.MaterialInput) (client.Material, error)
	UpdateMaterial(ctx context.Context, id int64, in client.MaterialInput) (client.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	Batches(ctx context.Context, materialID int64) ([]client.Batch, error)
}

type Manager struct{ api API }

func New(api API) *Manager { return &Manager{api: api} }

// List returns the current page of materials; q filters by name on the server.
func (m *Manager) List(ctx context.Context, q string) ([]client.Material, error) {
	return m.api.Materials(ctx, strings.TrimSpace(q))
}

// All returns the whole catalog, for reports.
func (m *Manager) All(ctx context.Context) ([]client.Material, error) {
	return m.api.AllMaterials(ctx)
}

func (m *Manager) Get(ctx context.Context, id int64) (client.Material, error) {
	return m.api.Material(ctx, id)
}

func (m *Manager) Create(ctx context.Context, in client.MaterialInput) (client.Material, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return client.Material{}, err
	}
	if in.InitialQuantity < 0 {
		return client.Material{}, apperr.Invalid("initial_quantity", "must not be negative")
	}
	return m.api.CreateMaterial(ctx, in)
}

// Update edits the definition; stock is never changed here.
func (m *Manager) Update(ctx context.Context, id int64, in client.MaterialInput) (client.Material, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.InitialQuantity = 0
	if err := validate(in); err != nil {
		return client.Material{}, err
	}
	return m.api.UpdateMaterial(ctx, id, in)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	return m.api.DeleteMaterial(ctx, id)
}

func (m *Manager) Batches(ctx context.Context, materialID int64) ([]client.Batch, error) {
	return m.api.Batches(ctx, materialID)
}

func validate(in client.MaterialInput) error {
	if in.Name == "" {
		return apperr.Invalid("name", "name is required")
	}
	if !in.Unit.Valid() {
		return apperr.Invalid("unit", "unknown unit %q", in.Unit)
	}
	if in.MinQuantity < 0 {
		return apperr.Invalid("min_quantity", "must not be negative")
	}
	if err := vocab.CheckQuantityFloat(in.MinQuantity); err != nil {
		return apperr.Invalid("min_quantity", "%v", err)
	}
	if err := vocab.CheckQuantityFloat(in.InitialQuantity); err != nil {
		return apperr.Invalid("initial_quantity", "%v", err)
	}
	return nil
}

// LowStock keeps the materials whose total fell under their minimum.
func LowStock(ms []client.Material) []client.Material {
	var out []client.Material
	for _, m := range ms {
		if m.LowStock() {
			out = append(out, m)
		}
	}
	return out
}

// ParseInput reads "name; unit; min[; initial][; narcotic]" as typed in a chat.
func ParseInput(line string) (client.MaterialInput, error) {
	parts := strings.Split(line, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return client.MaterialInput{}, apperr.Invalid("", "expected: name; unit; min quantity[; initial quantity][; narcotic]")
	}
	unit, err := vocab.ParseUnit(parts[1])
	if err != nil {
		return client.MaterialInput{}, apperr.Invalid("unit", "%v", err)
	}
	minQty, err := parseQty(parts[2])
	if err != nil {
		return client.MaterialInput{}, apperr.Invalid("min_quantity", "not a number: %q", parts[2])
	}
	in := client.MaterialInput{Name: parts[0], Unit: unit, MinQuantity: minQty}
	for _, p := range parts[3:] {
		switch strings.ToLower(p) {
		case "narcotic", "нс", "наркотическое":
			in.IsNarcotic = true
		case "":
		default:
			q, err := parseQty(p)
			if err != nil {
				return client.MaterialInput{}, apperr.Invalid("initial_quantity", "not a number: %q", p)
			}
			in.InitialQuantity = q
		}
	}
	return in, nil
}
