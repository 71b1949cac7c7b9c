package repository

import (
	"context"
	"time"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
)

// PostRepository persists posts. Lookups return nil, nil when the post does not exist.
type PostRepository interface {
	// List returns posts newest first by date; unpublished posts only when includeUnpublished.
	List(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *domain.Post) error
	// Update writes every mutable column and reports whether the post existed.
	Update(ctx context.Context, p *domain.Post) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// IncrementViews adds one view and returns the new count; found is false for unknown ids.
	IncrementViews(ctx context.Context, id string) (count int, found bool, err error)
}

// SeriesRepository persists series.
type SeriesRepository interface {
	// List returns series newest first with PostCount filled in. Post counts cover published posts
	// unless includeUnpublished. seriesType filters when non-empty.
	List(ctx context.Context, includeUnpublished bool, seriesType string) ([]*domain.Series, error)
	GetByID(ctx context.Context, id string) (*domain.Series, error)
	// GetByIDOrSlug matches key against id first, then slug.
	GetByIDOrSlug(ctx context.Context, key string) (*domain.Series, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, s *domain.Series) error
	Update(ctx context.Context, s *domain.Series) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// PublishedPosts returns the series' published posts in series order with like and comment counts.
	PublishedPosts(ctx context.Context, seriesID string) ([]domain.SeriesPost, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	// ListByPost returns every comment of a post, oldest first.
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Create(ctx context.Context, c *domain.Comment) error
	// Delete removes the comment of the given post; replies are removed by cascade.
	Delete(ctx context.Context, postID, id string) (bool, error)
}

// LikeRepository persists post likes, one per (post, client key).
type LikeRepository interface {
	Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error)
	// Toggle removes the like of clientKey if present, otherwise adds one with the given id, atomically.
	Toggle(ctx context.Context, postID, clientKey, newID string, at time.Time) (domain.LikeStatus, error)
}
