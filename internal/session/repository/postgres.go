package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/session/domain"
)

type sessionRow struct {
	ID         string       `db:"id"`
	Subject    string       `db:"subject"`
	TokenHash  string       `db:"token_hash"`
	IPAddress  string       `db:"ip_address"`
	UserAgent  string       `db:"user_agent"`
	ExpiresAt  time.Time    `db:"expires_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
	LastSeenAt sql.NullTime `db:"last_seen_at"`
	CreatedAt  time.Time    `db:"created_at"`
}

func (r sessionRow) toDomain() *domain.Session {
	s := &domain.Session{
		ID: r.ID, Subject: r.Subject, TokenHash: r.TokenHash, IPAddress: r.IPAddress, UserAgent: r.UserAgent,
		ExpiresAt: r.ExpiresAt, CreatedAt: r.CreatedAt,
	}
	if r.RevokedAt.Valid {
		t := r.RevokedAt.Time
		s.RevokedAt = &t
	}
	if r.LastSeenAt.Valid {
		t := r.LastSeenAt.Time
		s.LastSeenAt = &t
	}
	return s
}

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const selectSession = `
SELECT id, subject, token_hash, ip_address, user_agent, expires_at, revoked_at, last_seen_at, created_at
FROM sessions WHERE id = $1`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, selectSession, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

const insertSession = `
INSERT INTO sessions (id, subject, token_hash, ip_address, user_agent, expires_at, created_at)
VALUES (:id, :subject, :token_hash, :ip_address, :user_agent, :expires_at, :created_at)`

// Create persists a new session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.NamedExecContext(ctx, insertSession, sessionRow{
		ID: s.ID, Subject: s.Subject, TokenHash: s.TokenHash, IPAddress: s.IPAddress, UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt,
	})
	return err
}

// Revoke sets revoked_at once; revoking an already revoked session keeps the first timestamp.
func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at)
	return err
}

// UpdateLastSeen records activity on the session.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}
