package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
)

const postColumns = `id, slug, title, title_en, summary, summary_en, content, content_en, tags, tags_en,
level, published, date, view_count, series_id, series_order, created_at, updated_at`

type postRow struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`
	Title       string         `db:"title"`
	TitleEn     sql.NullString `db:"title_en"`
	Summary     sql.NullString `db:"summary"`
	SummaryEn   sql.NullString `db:"summary_en"`
	Content     string         `db:"content"`
	ContentEn   sql.NullString `db:"content_en"`
	Tags        pq.StringArray `db:"tags"`
	TagsEn      pq.StringArray `db:"tags_en"`
	Level       string         `db:"level"`
	Published   bool           `db:"published"`
	Date        time.Time      `db:"date"`
	ViewCount   int            `db:"view_count"`
	SeriesID    sql.NullString `db:"series_id"`
	SeriesOrder sql.NullInt64  `db:"series_order"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r postRow) toDomain() *domain.Post {
	p := &domain.Post{
		ID: r.ID, Slug: r.Slug, Title: r.Title, TitleEn: r.TitleEn.String,
		Summary: r.Summary.String, SummaryEn: r.SummaryEn.String,
		Content: r.Content, ContentEn: r.ContentEn.String,
		Tags: nonNil(r.Tags), TagsEn: nonNil(r.TagsEn),
		Level: r.Level, Published: r.Published, Date: r.Date, ViewCount: r.ViewCount,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
	if r.SeriesID.Valid {
		id := r.SeriesID.String
		p.SeriesID = &id
	}
	if r.SeriesOrder.Valid {
		n := int(r.SeriesOrder.Int64)
		p.SeriesOrder = &n
	}
	return p
}

func postToRow(p *domain.Post) postRow {
	row := postRow{
		ID: p.ID, Slug: p.Slug, Title: p.Title, TitleEn: nullString(p.TitleEn),
		Summary: nullString(p.Summary), SummaryEn: nullString(p.SummaryEn),
		Content: p.Content, ContentEn: nullString(p.ContentEn),
		Tags: pq.StringArray(nonNil(p.Tags)), TagsEn: pq.StringArray(nonNil(p.TagsEn)),
		Level: p.Level, Published: p.Published, Date: p.Date, ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
	if p.SeriesID != nil {
		row.SeriesID = sql.NullString{String: *p.SeriesID, Valid: true}
	}
	if p.SeriesOrder != nil {
		row.SeriesOrder = sql.NullInt64{Int64: int64(*p.SeriesOrder), Valid: true}
	}
	return row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type PostgresPostRepository struct {
	db *sqlx.DB
}

// NewPostgresPostRepository returns a post repository that uses the given db for persistence.
func NewPostgresPostRepository(conn *sqlx.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: conn}
}

func (r *PostgresPostRepository) List(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error) {
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT `+postColumns+` FROM posts
WHERE published OR $1
ORDER BY date DESC, id DESC`, includeUnpublished)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Post, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// GetByID returns the post for id, or nil if not found.
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresPostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug)
	return exists, err
}

// Create persists the post. The post must have ID and Slug set.
func (r *PostgresPostRepository) Create(ctx context.Context, p *domain.Post) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO posts (`+postColumns+`)
VALUES (:id, :slug, :title, :title_en, :summary, :summary_en, :content, :content_en, :tags, :tags_en,
        :level, :published, :date, :view_count, :series_id, :series_order, :created_at, :updated_at)`, postToRow(p))
	return err
}

func (r *PostgresPostRepository) Update(ctx context.Context, p *domain.Post) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
UPDATE posts SET slug = :slug, title = :title, title_en = :title_en, summary = :summary,
    summary_en = :summary_en, content = :content, content_en = :content_en, tags = :tags,
    tags_en = :tags_en, level = :level, published = :published, date = :date,
    series_id = :series_id, series_order = :series_order, updated_at = :updated_at
WHERE id = :id`, postToRow(p))
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PostgresPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PostgresPostRepository) IncrementViews(ctx context.Context, id string) (int, bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
