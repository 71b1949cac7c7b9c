package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
)

type commentRow struct {
	ID        string         `db:"id"`
	PostID    string         `db:"post_id"`
	ParentID  sql.NullString `db:"parent_id"`
	Name      string         `db:"name"`
	Content   string         `db:"content"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r commentRow) toDomain() *domain.Comment {
	c := &domain.Comment{ID: r.ID, PostID: r.PostID, Name: r.Name, Content: r.Content, CreatedAt: r.CreatedAt}
	if r.ParentID.Valid {
		id := r.ParentID.String
		c.ParentID = &id
	}
	return c
}

type PostgresCommentRepository struct {
	db *sqlx.DB
}

// NewPostgresCommentRepository returns a comment repository that uses the given db for persistence.
func NewPostgresCommentRepository(conn *sqlx.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: conn}
}

func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT id, post_id, parent_id, name, content, created_at
FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Comment, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// GetByID returns the comment for id, or nil if not found.
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var row commentRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, post_id, parent_id, name, content, created_at FROM comments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	row := commentRow{ID: c.ID, PostID: c.PostID, Name: c.Name, Content: c.Content, CreatedAt: c.CreatedAt}
	if c.ParentID != nil {
		row.ParentID = sql.NullString{String: *c.ParentID, Valid: true}
	}
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO comments (id, post_id, parent_id, name, content, created_at)
VALUES (:id, :post_id, :parent_id, :name, :content, :created_at)`, row)
	return err
}

func (r *PostgresCommentRepository) Delete(ctx context.Context, postID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND post_id = $2`, id, postID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
