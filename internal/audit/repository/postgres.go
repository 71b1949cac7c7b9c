package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/audit/domain"
)

type auditRow struct {
	ID        string         `db:"id"`
	Actor     string         `db:"actor"`
	Action    string         `db:"action"`
	Resource  string         `db:"resource"`
	IP        string         `db:"ip"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r auditRow) toDomain() *domain.AuditLog {
	return &domain.AuditLog{
		ID: r.ID, Actor: r.Actor, Action: r.Action, Resource: r.Resource,
		IP: r.IP, Metadata: r.Metadata.String, CreatedAt: r.CreatedAt,
	}
}

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	var row auditRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, actor, action, resource, ip, metadata, created_at FROM audit_logs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// List returns audit logs newest first, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT id, actor, action, resource, ip, metadata, created_at
FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO audit_logs (id, actor, action, resource, ip, metadata, created_at)
VALUES (:id, :actor, :action, :resource, :ip, :metadata, :created_at)`, auditRow{
		ID: a.ID, Actor: a.Actor, Action: a.Action, Resource: a.Resource, IP: a.IP,
		Metadata:  sql.NullString{String: a.Metadata, Valid: a.Metadata != ""},
		CreatedAt: a.CreatedAt,
	})
	return err
}
