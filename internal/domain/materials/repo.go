package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectMaterial = `
	SELECT m.id, m.name, m.unit, m.min_quantity, m.is_narcotic,
	       COALESCE((SELECT SUM(b.current_quantity) FROM batches b WHERE b.material_id = m.id), 0)
	FROM materials m
`

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.MinQuantity, &m.IsNarcotic, &m.TotalQuantity); err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// List ищет по части названия без учёта регистра.
func (r *Repo) List(ctx context.Context, p ListParams) ([]Material, error) {
	offset, limit := p.Window()
	q := strings.TrimSpace(p.Query)

	rows, err := r.pool.Query(ctx, selectMaterial+`
		WHERE $1 = '' OR m.name ILIKE '%' || $1 || '%'
		ORDER BY m.name
		OFFSET $2 LIMIT $3
	`, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx, selectMaterial+` WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// Create добавляет материал и, если задано начальное количество, первую партию.
func (r *Repo) Create(ctx context.Context, in Input) (*Material, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO materials (name, unit, min_quantity, is_narcotic)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, in.Name, string(in.Unit), in.MinQuantity, in.IsNarcotic).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}

	if in.InitialQuantity > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO batches (material_id, initial_quantity, current_quantity)
			VALUES ($1,$2,$2)
		`, id, in.InitialQuantity); err != nil {
			return nil, fmt.Errorf("insert initial batch: %w", err)
		}
	}

	m, err := scanMaterial(tx.QueryRow(ctx, selectMaterial+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return m, tx.Commit(ctx)
}

// Update меняет карточку материала; остатки правятся только транзакциями.
func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Material, error) {
	in.InitialQuantity = 0
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE materials SET name=$2, unit=$3, min_quantity=$4, is_narcotic=$5
		WHERE id=$1
	`, id, in.Name, string(in.Unit), in.MinQuantity, in.IsNarcotic)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	if isForeignKeyViolation(err) {
		return ErrHasHistory
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Batches returns every batch of the material, exhausted ones included,
// soonest expiry first.
func (r *Repo) Batches(ctx context.Context, materialID int64) ([]Batch, error) {
	if _, err := r.Get(ctx, materialID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, initial_quantity, current_quantity, expiration_date, created_at
		FROM batches
		WHERE material_id = $1
		ORDER BY expiration_date NULLS LAST, id
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.MaterialID, &b.InitialQuantity, &b.CurrentQuantity, &b.ExpirationDate, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
