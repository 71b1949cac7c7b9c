package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
)

const seriesColumns = `s.id, s.slug, s.title, s.title_en, s.description, s.description_en, s.type, s.level,
s.published, s.created_at, s.updated_at`

type seriesRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Title         string         `db:"title"`
	TitleEn       sql.NullString `db:"title_en"`
	Description   sql.NullString `db:"description"`
	DescriptionEn sql.NullString `db:"description_en"`
	Type          string         `db:"type"`
	Level         string         `db:"level"`
	Published     bool           `db:"published"`
	PostCount     int            `db:"post_count"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r seriesRow) toDomain() *domain.Series {
	return &domain.Series{
		ID: r.ID, Slug: r.Slug, Title: r.Title, TitleEn: r.TitleEn.String,
		Description: r.Description.String, DescriptionEn: r.DescriptionEn.String,
		Type: r.Type, Level: r.Level, Published: r.Published, PostCount: r.PostCount,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func seriesToRow(s *domain.Series) seriesRow {
	return seriesRow{
		ID: s.ID, Slug: s.Slug, Title: s.Title, TitleEn: nullString(s.TitleEn),
		Description: nullString(s.Description), DescriptionEn: nullString(s.DescriptionEn),
		Type: s.Type, Level: s.Level, Published: s.Published,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

type seriesPostRow struct {
	postRow
	LikeCount    int `db:"like_count"`
	CommentCount int `db:"comment_count"`
}

type PostgresSeriesRepository struct {
	db *sqlx.DB
}

// NewPostgresSeriesRepository returns a series repository that uses the given db for persistence.
func NewPostgresSeriesRepository(conn *sqlx.DB) *PostgresSeriesRepository {
	return &PostgresSeriesRepository{db: conn}
}

func (r *PostgresSeriesRepository) List(ctx context.Context, includeUnpublished bool, seriesType string) ([]*domain.Series, error) {
	var rows []seriesRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT `+seriesColumns+`,
    (SELECT COUNT(*) FROM posts p WHERE p.series_id = s.id AND (p.published OR $1)) AS post_count
FROM series s
WHERE (s.published OR $1) AND ($2 = '' OR s.type = $2)
ORDER BY s.created_at DESC, s.id DESC`, includeUnpublished, seriesType)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Series, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// GetByID returns the series for id, or nil if not found.
func (r *PostgresSeriesRepository) GetByID(ctx context.Context, id string) (*domain.Series, error) {
	return r.getOne(ctx, `WHERE s.id = $1`, id)
}

// GetByIDOrSlug returns nil, nil when neither an id nor a slug matches.
func (r *PostgresSeriesRepository) GetByIDOrSlug(ctx context.Context, key string) (*domain.Series, error) {
	return r.getOne(ctx, `WHERE s.id = $1 OR s.slug = $1 ORDER BY (s.id = $1) DESC LIMIT 1`, key)
}

func (r *PostgresSeriesRepository) getOne(ctx context.Context, where string, arg string) (*domain.Series, error) {
	var row seriesRow
	err := r.db.GetContext(ctx, &row, `
SELECT `+seriesColumns+`,
    (SELECT COUNT(*) FROM posts p WHERE p.series_id = s.id AND p.published) AS post_count
FROM series s `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresSeriesRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM series WHERE slug = $1)`, slug)
	return exists, err
}

// Create persists the series. The series must have ID and Slug set.
func (r *PostgresSeriesRepository) Create(ctx context.Context, s *domain.Series) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO series (id, slug, title, title_en, description, description_en, type, level, published, created_at, updated_at)
VALUES (:id, :slug, :title, :title_en, :description, :description_en, :type, :level, :published, :created_at, :updated_at)`,
		seriesToRow(s))
	return err
}

func (r *PostgresSeriesRepository) Update(ctx context.Context, s *domain.Series) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
UPDATE series SET slug = :slug, title = :title, title_en = :title_en, description = :description,
    description_en = :description_en, type = :type, level = :level, published = :published,
    updated_at = :updated_at
WHERE id = :id`, seriesToRow(s))
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Delete removes the series. Its posts stay and lose their series reference.
func (r *PostgresSeriesRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PostgresSeriesRepository) PublishedPosts(ctx context.Context, seriesID string) ([]domain.SeriesPost, error) {
	var rows []seriesPostRow
	err := r.db.SelectContext(ctx, &rows, `
SELECT `+postColumns+`,
    (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = posts.id) AS like_count,
    (SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id) AS comment_count
FROM posts
WHERE series_id = $1 AND published
ORDER BY series_order ASC NULLS LAST, date ASC`, seriesID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SeriesPost, len(rows))
	for i := range rows {
		out[i] = domain.SeriesPost{
			Post:         *rows[i].toDomain(),
			LikeCount:    rows[i].LikeCount,
			CommentCount: rows[i].CommentCount,
		}
	}
	return out, nil
}
