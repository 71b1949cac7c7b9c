package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	contentrepo "github.com/jaehkim-quant/research-platform/internal/content/repository"
	"github.com/jaehkim-quant/research-platform/internal/slug"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
)

// PostInput is the body of post create and update requests. Absent fields keep their current
// value on update; seriesId and seriesOrder may be set to null to detach a post.
type PostInput struct {
	Slug        *string          `json:"slug"`
	Title       *string          `json:"title"`
	TitleEn     *string          `json:"titleEn"`
	Summary     *string          `json:"summary"`
	SummaryEn   *string          `json:"summaryEn"`
	Content     *string          `json:"content"`
	ContentEn   *string          `json:"contentEn"`
	Tags        []string         `json:"tags"`
	TagsEn      []string         `json:"tagsEn"`
	Level       *string          `json:"level"`
	Published   *bool            `json:"published"`
	Date        *string          `json:"date"`
	SeriesID    Optional[string] `json:"seriesId"`
	SeriesOrder Optional[int]    `json:"seriesOrder"`
}

// PostService manages posts.
type PostService struct {
	base
	posts     contentrepo.PostRepository
	series    contentrepo.SeriesRepository
	allocator *slug.Allocator
}

func NewPostService(posts contentrepo.PostRepository, series contentrepo.SeriesRepository, opts ...Option) *PostService {
	return &PostService{
		base:      newBase(opts),
		posts:     posts,
		series:    series,
		allocator: slug.NewAllocator(posts),
	}
}

// List returns published posts, or every post when includeUnpublished (admin only).
func (s *PostService) List(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error) {
	list, err := s.posts.List(ctx, includeUnpublished)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Post{}
	}
	return list, nil
}

// Get returns a post. Unpublished posts are only visible to admins.
func (s *PostService) Get(ctx context.Context, id string, admin bool) (*domain.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Published && !admin) {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *PostService) Create(ctx context.Context, in PostInput) (*domain.Post, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrTitleRequired
	}
	now := s.now()
	p := &domain.Post{
		ID:        s.newID(now),
		Level:     domain.LevelIntermediate,
		Date:      now,
		Tags:      []string{},
		TagsEn:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	explicit := ""
	if in.Slug != nil {
		explicit = *in.Slug
	}
	sl, err := s.allocator.Allocate(ctx, explicit)
	if err != nil {
		return nil, err
	}
	p.Slug = sl
	if err := translateWrite(s.posts.Create(ctx, p)); err != nil {
		return nil, err
	}
	s.logger.Info("content: post created", zap.String("post_id", p.ID), zap.String("slug", p.Slug))
	s.emit(ctx, telemetry.EventPostCreated, map[string]string{"post_id": p.ID, "slug": p.Slug})
	return p, nil
}

func (s *PostService) Update(ctx context.Context, id string, in PostInput) (*domain.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if in.Slug != nil {
		if sl := slug.Normalize(*in.Slug); sl != "" {
			p.Slug = sl
		}
	}
	p.UpdatedAt = s.now()
	found, err := s.posts.Update(ctx, p)
	if err = translateWrite(err); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	found, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrPostNotFound
	}
	return nil
}

// RecordView increments the view counter and returns the new count.
func (s *PostService) RecordView(ctx context.Context, id string) (int, error) {
	count, found, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrPostNotFound
	}
	return count, nil
}

// apply copies the set fields of in onto p, validating as it goes. Slug is handled by the caller.
func (s *PostService) apply(ctx context.Context, p *domain.Post, in PostInput) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	setString(&p.TitleEn, in.TitleEn)
	setString(&p.Summary, in.Summary)
	setString(&p.SummaryEn, in.SummaryEn)
	setString(&p.Content, in.Content)
	setString(&p.ContentEn, in.ContentEn)
	if in.Tags != nil {
		p.Tags = cleanTags(in.Tags)
	}
	if in.TagsEn != nil {
		p.TagsEn = cleanTags(in.TagsEn)
	}
	if in.Level != nil && *in.Level != "" {
		if !domain.ValidLevel(*in.Level) {
			return ErrInvalidLevel
		}
		p.Level = *in.Level
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	if in.Date != nil && *in.Date != "" {
		d, err := parseDate(*in.Date)
		if err != nil {
			return err
		}
		p.Date = d
	}
	if in.SeriesID.Set {
		if in.SeriesID.Value == nil || *in.SeriesID.Value == "" {
			p.SeriesID = nil
		} else {
			sr, err := s.series.GetByID(ctx, *in.SeriesID.Value)
			if err != nil {
				return err
			}
			if sr == nil {
				return ErrUnknownSeries
			}
			id := sr.ID
			p.SeriesID = &id
		}
	}
	if in.SeriesOrder.Set {
		p.SeriesOrder = in.SeriesOrder.Value
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
