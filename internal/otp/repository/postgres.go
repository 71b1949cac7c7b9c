package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/db"
	"github.com/jaehkim-quant/research-platform/internal/otp/domain"
)

type codeRow struct {
	ID        string    `db:"id"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

func (r codeRow) toDomain() *domain.Code {
	return &domain.Code{ID: r.ID, CodeHash: r.CodeHash, ExpiresAt: r.ExpiresAt, Used: r.Used, CreatedAt: r.CreatedAt}
}

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a login code repository that uses the given db.
func NewPostgresRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const invalidateUnused = `UPDATE otp_codes SET used = TRUE WHERE used = FALSE`

const insertCode = `
INSERT INTO otp_codes (id, code_hash, expires_at, used, created_at)
VALUES (:id, :code_hash, :expires_at, :used, :created_at)`

// Issue invalidates every unused code and persists c in one transaction.
func (r *PostgresRepository) Issue(ctx context.Context, c *domain.Code) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, invalidateUnused); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, insertCode, codeRow{
			ID: c.ID, CodeHash: c.CodeHash, ExpiresAt: c.ExpiresAt, Used: c.Used, CreatedAt: c.CreatedAt,
		})
		return err
	})
}

// The inner SELECT locks the candidate row; a concurrent consumer skips it and finds nothing.
const consumeCode = `
UPDATE otp_codes SET used = TRUE
WHERE id = (
    SELECT id FROM otp_codes
    WHERE code_hash = $1 AND used = FALSE AND expires_at > $2
    ORDER BY created_at DESC, id DESC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, code_hash, expires_at, used, created_at`

// Consume atomically marks the newest live code matching codeHash used.
func (r *PostgresRepository) Consume(ctx context.Context, codeHash string, now time.Time) (*domain.Code, error) {
	var row codeRow
	if err := r.db.GetContext(ctx, &row, consumeCode, codeHash, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}
