// Package requestflow assembles a multi-line replenishment request on the
// client and hands it to the server as one entity.
package requestflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

type API interface {
	Requests(ctx context.Context) ([]client.Request, error)
	CreateRequest(ctx context.Context, items []client.RequestItem) (client.Request, error)
	ApproveRequest(ctx context.Context, id int64) (client.Request, error)
}

// Draft is an ordered list of line items not yet sent.
type Draft struct {
	api   API
	log   *slog.Logger
	items []client.RequestItem
}

func New(api API, log *slog.Logger) *Draft {
	return &Draft{api: api, log: log}
}

func (d *Draft) Items() []client.RequestItem {
	out := make([]client.RequestItem, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Draft) Len() int { return len(d.items) }

func (d *Draft) AddItem(it client.RequestItem) error {
	it.MaterialName = strings.TrimSpace(it.MaterialName)
	if it.MaterialName == "" {
		return apperr.Invalid("material_name", "name is required")
	}
	if it.Quantity <= 0 {
		return apperr.Invalid("quantity", "must be greater than zero")
	}
	if err := vocab.CheckQuantityFloat(it.Quantity); err != nil {
		return apperr.Invalid("quantity", "%v", err)
	}
	if !it.Unit.Valid() {
		return apperr.Invalid("unit", "unknown unit %q", it.Unit)
	}
	d.items = append(d.items, it)
	return nil
}

func (d *Draft) RemoveItem(i int) error {
	if i < 0 || i >= len(d.items) {
		return apperr.Invalid("item", "no line %d", i+1)
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	return nil
}

func (d *Draft) Clear() { d.items = nil }

// Submit sends the whole draft. An empty draft never reaches the server.
func (d *Draft) Submit(ctx context.Context) (client.Request, error) {
	if len(d.items) == 0 {
		return client.Request{}, apperr.Invalid("items", "add at least one line to the request")
	}
	r, err := d.api.CreateRequest(ctx, d.Items())
	if err != nil {
		return client.Request{}, err
	}
	d.log.Info("request submitted", "request_id", r.ID, "items", len(d.items))
	d.items = nil
	return r, nil
}

func (d *Draft) List(ctx context.Context) ([]client.Request, error) {
	return d.api.Requests(ctx)
}

// Approve is a privileged single call; the server turns the items into batches.
func (d *Draft) Approve(ctx context.Context, role vocab.Role, id int64) (client.Request, error) {
	if !role.Can(vocab.ActionApproveRequest) {
		return client.Request{}, apperr.Invalid("role", "approving requests is not allowed for %s", role)
	}
	r, err := d.api.ApproveRequest(ctx, id)
	if err != nil {
		return client.Request{}, err
	}
	d.log.Info("request approved", "request_id", id)
	return r, nil
}

// ParseLine reads "name; quantity; unit[; YYYY-MM-DD]".
func ParseLine(line string) (client.RequestItem, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return client.RequestItem{}, apperr.Invalid("", "expected: name; quantity; unit[; YYYY-MM-DD]")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	q, err := decimal.NewFromString(strings.ReplaceAll(parts[1], ",", "."))
	if err != nil {
		return client.RequestItem{}, apperr.Invalid("quantity", "not a number: %q", parts[1])
	}
	unit, err := vocab.ParseUnit(parts[2])
	if err != nil {
		return client.RequestItem{}, apperr.Invalid("unit", "%v", err)
	}
	it := client.RequestItem{MaterialName: parts[0], Quantity: q.InexactFloat64(), Unit: unit}
	if len(parts) == 4 && parts[3] != "" {
		exp, err := time.Parse(time.DateOnly, parts[3])
		if err != nil {
			return client.RequestItem{}, apperr.Invalid("expiration_date", "use YYYY-MM-DD, got %q", parts[3])
		}
		it.ExpirationDate = &exp
	}
	return it, nil
}
