// Package dashboard aggregates the stock overview shown on the start page.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/clinic-stock/internal/domain/materials"
)

const (
	ExpiryWindow      = 30 * 24 * time.Hour
	DistributionLimit = 10
)

type DistributionItem struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"total_quantity"`
}

type Stats struct {
	LowStockItems        []materials.Material `json:"low_stock_items"`
	ExpiringSoonBatches  []materials.Batch    `json:"expiring_soon_batches"`
	MaterialDistribution []DistributionItem   `json:"material_distribution"`
}

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	mats, err := r.totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("material totals: %w", err)
	}
	from, to := ExpiryRange(now)
	batches, err := r.datedBatches(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("expiring batches: %w", err)
	}
	return Build(now, mats, batches), nil
}

func (r *Repo) totals(ctx context.Context) ([]materials.Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.name, m.unit, m.min_quantity, m.is_narcotic,
		       COALESCE(SUM(b.current_quantity), 0) AS total
		FROM materials m
		LEFT JOIN batches b ON b.material_id = m.id
		GROUP BY m.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []materials.Material{}
	for rows.Next() {
		var m materials.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.MinQuantity, &m.IsNarcotic, &m.TotalQuantity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// datedBatches narrows the scan to the expiry window; ExpiringSoon makes the
// final call.
func (r *Repo) datedBatches(ctx context.Context, from, to time.Time) ([]materials.Batch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.material_id, b.initial_quantity, b.current_quantity, b.expiration_date, b.created_at,
		       m.name, m.unit, m.min_quantity, m.is_narcotic
		FROM batches b
		JOIN materials m ON m.id = b.material_id
		WHERE b.expiration_date BETWEEN $1::date AND $2::date
	`, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []materials.Batch{}
	for rows.Next() {
		var (
			b materials.Batch
			m materials.Material
		)
		if err := rows.Scan(
			&b.ID, &b.MaterialID, &b.InitialQuantity, &b.CurrentQuantity, &b.ExpirationDate, &b.CreatedAt,
			&m.Name, &m.Unit, &m.MinQuantity, &m.IsNarcotic,
		); err != nil {
			return nil, err
		}
		m.ID = b.MaterialID
		b.Material = &m
		out = append(out, b)
	}
	return out, rows.Err()
}
