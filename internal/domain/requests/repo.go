package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, requesterID int64, items []Item) (*Request, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req := Request{RequesterID: requesterID, Status: StatusPending, Items: items}
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_requests (requester_id, status)
		VALUES ($1,$2)
		RETURNING id, created_at
	`, requesterID, StatusPending).Scan(&req.ID, &req.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`
			INSERT INTO purchase_request_items (request_id, position, material_name, quantity, unit, expiration_date)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, req.ID, i, it.MaterialName, it.Quantity, string(it.Unit), it.ExpirationDate)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert request items: %w", err)
	}

	return &req, tx.Commit(ctx)
}

func (r *Repo) List(ctx context.Context) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, requester_id, status, created_at
		FROM purchase_requests
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	out := []Request{}
	for rows.Next() {
		var q Request
		if err := rows.Scan(&q.ID, &q.RequesterID, &q.Status, &q.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.items(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Request, error) {
	var q Request
	err := r.pool.QueryRow(ctx, `
		SELECT id, requester_id, status, created_at FROM purchase_requests WHERE id = $1
	`, id).Scan(&q.ID, &q.RequesterID, &q.Status, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if q.Items, err = r.items(ctx, r.pool, id); err != nil {
		return nil, err
	}
	return &q, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repo) items(ctx context.Context, db querier, requestID int64) ([]Item, error) {
	rows, err := db.Query(ctx, `
		SELECT material_name, quantity, unit, expiration_date
		FROM purchase_request_items
		WHERE request_id = $1
		ORDER BY position
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.MaterialName, &it.Quantity, &it.Unit, &it.ExpirationDate); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Approve превращает позиции заявки в партии одной транзакцией:
// материал ищется по имени (без учёта регистра) или создаётся,
// на каждую позицию заводится партия и приходная транзакция.
func (r *Repo) Approve(ctx context.Context, approverID, id int64) (*Request, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM purchase_requests WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != StatusPending {
		return nil, ErrNotPending
	}

	items, err := r.items(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		materialID, err := findOrCreateMaterial(ctx, tx, it)
		if err != nil {
			return nil, err
		}
		var batchID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO batches (material_id, initial_quantity, current_quantity, expiration_date)
			VALUES ($1,$2,$2,$3)
			RETURNING id
		`, materialID, it.Quantity, it.ExpirationDate).Scan(&batchID); err != nil {
			return nil, fmt.Errorf("insert batch: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions (batch_id, material_id, delta, note, user_id)
			VALUES ($1,$2,$3,$4,$5)
		`, batchID, materialID, it.Quantity, fmt.Sprintf("request #%d", id), approverID); err != nil {
			return nil, fmt.Errorf("insert receipt: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE purchase_requests SET status = $2 WHERE id = $1`, id, StatusApproved); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func findOrCreateMaterial(ctx context.Context, tx pgx.Tx, it Item) (int64, error) {
	var (
		id   int64
		unit vocab.Unit
	)
	err := tx.QueryRow(ctx, `
		SELECT id, unit FROM materials WHERE LOWER(name) = LOWER($1) FOR UPDATE
	`, it.MaterialName).Scan(&id, &unit)
	if err == nil {
		if unit != it.Unit {
			return 0, fmt.Errorf("%w: %s is counted in %s", ErrUnitMismatch, it.MaterialName, unit)
		}
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO materials (name, unit) VALUES ($1,$2) RETURNING id
	`, it.MaterialName, string(it.Unit)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create material %q: %w", it.MaterialName, err)
	}
	return id, nil
}
