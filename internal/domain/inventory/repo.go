package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Apply проводит движение по партии одной транзакцией БД: блокирует строку
// партии, проверяет правила, меняет остаток и пишет журнал.
func (r *Repo) Apply(ctx context.Context, actorID int64, in TransactionInput) (*Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var st BatchState
	err = tx.QueryRow(ctx, `
		SELECT b.material_id, b.current_quantity, m.is_narcotic
		FROM batches b
		JOIN materials m ON m.id = b.material_id
		WHERE b.id = $1
		FOR UPDATE OF b
	`, in.BatchID).Scan(&st.MaterialID, &st.Current, &st.IsNarcotic)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock batch: %w", err)
	}

	if err := CheckTransaction(st, &in); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE batches SET current_quantity = current_quantity + $2 WHERE id = $1
	`, in.BatchID, in.Delta); err != nil {
		return nil, fmt.Errorf("update batch: %w", err)
	}

	t := Transaction{BatchID: in.BatchID, MaterialID: in.MaterialID, Delta: in.Delta, Note: in.Note, UserID: actorID}
	if err = tx.QueryRow(ctx, `
		INSERT INTO transactions (batch_id, material_id, delta, note, user_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, in.BatchID, in.MaterialID, in.Delta, in.Note, actorID).Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if in.NarcoticLog != nil {
		if _, err = tx.Exec(ctx, `
			INSERT INTO narcotic_logs (transaction_id, patient_info, reason)
			VALUES ($1,$2,$3)
		`, t.ID, in.NarcoticLog.PatientInfo, in.NarcoticLog.Reason); err != nil {
			return nil, fmt.Errorf("insert narcotic log: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

// NarcoticLogs returns the journal newest first.
func (r *Repo) NarcoticLogs(ctx context.Context, skip, limit int) ([]NarcoticLog, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.transaction_id, n.patient_info, n.reason, t.delta, n.created_at,
		       m.id, m.name, m.unit, m.is_narcotic,
		       u.id, u.email, u.full_name, u.role, u.is_active
		FROM narcotic_logs n
		JOIN transactions t ON t.id = n.transaction_id
		JOIN materials m ON m.id = t.material_id
		JOIN users u ON u.id = t.user_id
		ORDER BY n.created_at DESC, n.id DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NarcoticLog{}
	for rows.Next() {
		var l NarcoticLog
		if err := rows.Scan(
			&l.ID, &l.TransactionID, &l.PatientInfo, &l.Reason, &l.Delta, &l.CreatedAt,
			&l.Material.ID, &l.Material.Name, &l.Material.Unit, &l.Material.IsNarcotic,
			&l.User.ID, &l.User.Email, &l.User.FullName, &l.User.Role, &l.User.IsActive,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
