package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/contact/domain"
)

const inquiryColumns = `id, purpose, name, email, subject, message, slug, page_url, read, created_at`

type inquiryRow struct {
	ID        string    `db:"id"`
	Purpose   string    `db:"purpose"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	Slug      string    `db:"slug"`
	PageURL   string    `db:"page_url"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r inquiryRow) toDomain() *domain.Inquiry {
	return &domain.Inquiry{
		ID: r.ID, Purpose: r.Purpose, Name: r.Name, Email: r.Email, Subject: r.Subject,
		Message: r.Message, Slug: r.Slug, PageURL: r.PageURL, Read: r.Read, CreatedAt: r.CreatedAt,
	}
}

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an inquiry repository that uses the given db for persistence.
func NewPostgresRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create persists the inquiry. The inquiry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO contact_inquiries (`+inquiryColumns+`)
VALUES (:id, :purpose, :name, :email, :subject, :message, :slug, :page_url, :read, :created_at)`, inquiryRow{
		ID: inq.ID, Purpose: inq.Purpose, Name: inq.Name, Email: inq.Email, Subject: inq.Subject,
		Message: inq.Message, Slug: inq.Slug, PageURL: inq.PageURL, Read: inq.Read, CreatedAt: inq.CreatedAt,
	})
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Inquiry, error) {
	var rows []inquiryRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+inquiryColumns+` FROM contact_inquiries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Inquiry, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// MarkRead returns nil, nil when no inquiry has the given id.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string, read bool) (*domain.Inquiry, error) {
	var row inquiryRow
	err := r.db.GetContext(ctx, &row,
		`UPDATE contact_inquiries SET read = $2 WHERE id = $1 RETURNING `+inquiryColumns, id, read)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_inquiries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
