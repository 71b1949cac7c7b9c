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

// SeriesInput is the body of series create and update requests. Absent fields keep their value.
type SeriesInput struct {
	Slug          *string `json:"slug"`
	Title         *string `json:"title"`
	TitleEn       *string `json:"titleEn"`
	Description   *string `json:"description"`
	DescriptionEn *string `json:"descriptionEn"`
	Type          *string `json:"type"`
	Level         *string `json:"level"`
	Published     *bool   `json:"published"`
}

// SeriesService manages series.
type SeriesService struct {
	base
	series    contentrepo.SeriesRepository
	allocator *slug.Allocator
}

func NewSeriesService(series contentrepo.SeriesRepository, opts ...Option) *SeriesService {
	return &SeriesService{base: newBase(opts), series: series, allocator: slug.NewAllocator(series)}
}

// List returns series, newest first. seriesType filters when non-empty.
func (s *SeriesService) List(ctx context.Context, includeUnpublished bool, seriesType string) ([]*domain.Series, error) {
	list, err := s.series.List(ctx, includeUnpublished, seriesType)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Series{}
	}
	return list, nil
}

// Get looks a series up by id or slug and attaches its published posts in reading order.
func (s *SeriesService) Get(ctx context.Context, key string, admin bool) (*domain.SeriesDetail, error) {
	sr, err := s.series.GetByIDOrSlug(ctx, key)
	if err != nil {
		return nil, err
	}
	if sr == nil || (!sr.Published && !admin) {
		return nil, ErrSeriesNotFound
	}
	posts, err := s.series.PublishedPosts(ctx, sr.ID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.SeriesPost{}
	}
	return &domain.SeriesDetail{Series: *sr, Posts: posts}, nil
}

func (s *SeriesService) Create(ctx context.Context, in SeriesInput) (*domain.Series, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrTitleRequired
	}
	now := s.now()
	sr := &domain.Series{
		ID:        s.newID(now),
		Type:      domain.SeriesTypeKnowledgeBase,
		Level:     domain.LevelIntermediate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applySeries(sr, in); err != nil {
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
	sr.Slug = sl
	if err := translateWrite(s.series.Create(ctx, sr)); err != nil {
		return nil, err
	}
	s.logger.Info("content: series created", zap.String("series_id", sr.ID), zap.String("slug", sr.Slug))
	s.emit(ctx, telemetry.EventSeriesCreated, map[string]string{"series_id": sr.ID, "slug": sr.Slug})
	return sr, nil
}

func (s *SeriesService) Update(ctx context.Context, id string, in SeriesInput) (*domain.Series, error) {
	sr, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		return nil, ErrSeriesNotFound
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := applySeries(sr, in); err != nil {
		return nil, err
	}
	if in.Slug != nil {
		if sl := slug.Normalize(*in.Slug); sl != "" {
			sr.Slug = sl
		}
	}
	sr.UpdatedAt = s.now()
	found, err := s.series.Update(ctx, sr)
	if err = translateWrite(err); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSeriesNotFound
	}
	return sr, nil
}

// Delete removes a series; its posts are kept and detached.
func (s *SeriesService) Delete(ctx context.Context, id string) error {
	found, err := s.series.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrSeriesNotFound
	}
	return nil
}

func applySeries(sr *domain.Series, in SeriesInput) error {
	if in.Title != nil {
		sr.Title = strings.TrimSpace(*in.Title)
	}
	setString(&sr.TitleEn, in.TitleEn)
	setString(&sr.Description, in.Description)
	setString(&sr.DescriptionEn, in.DescriptionEn)
	if in.Type != nil && *in.Type != "" {
		if !domain.ValidSeriesType(*in.Type) {
			return ErrInvalidType
		}
		sr.Type = *in.Type
	}
	if in.Level != nil && *in.Level != "" {
		if !domain.ValidLevel(*in.Level) {
			return ErrInvalidLevel
		}
		sr.Level = *in.Level
	}
	if in.Published != nil {
		sr.Published = *in.Published
	}
	return nil
}
