package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
)

type memPosts struct {
	mu        sync.Mutex
	posts     map[string]*domain.Post
	slugTaken func(slug string) bool
}

func newMemPosts() *memPosts {
	return &memPosts{posts: make(map[string]*domain.Post)}
}

func (r *memPosts) List(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, p := range r.posts {
		if p.Published || includeUnpublished {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memPosts) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPosts) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken != nil && r.slugTaken(slug) {
		return true, nil
	}
	for _, p := range r.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPosts) slugConflict(id, slug string) bool {
	for _, p := range r.posts {
		if p.Slug == slug && p.ID != id {
			return true
		}
	}
	return false
}

func (r *memPosts) Create(ctx context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugConflict(p.ID, p.Slug) {
		return &pq.Error{Code: "23505"}
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPosts) Update(ctx context.Context, p *domain.Post) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return false, nil
	}
	if r.slugConflict(p.ID, p.Slug) {
		return false, &pq.Error{Code: "23505"}
	}
	cp := *p
	r.posts[p.ID] = &cp
	return true, nil
}

func (r *memPosts) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.posts[id]
	delete(r.posts, id)
	return ok, nil
}

func (r *memPosts) IncrementViews(ctx context.Context, id string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, false, nil
	}
	p.ViewCount++
	return p.ViewCount, true, nil
}

type memSeries struct {
	mu     sync.Mutex
	series map[string]*domain.Series
	posts  *memPosts
}

func newMemSeries(posts *memPosts) *memSeries {
	return &memSeries{series: make(map[string]*domain.Series), posts: posts}
}

func (r *memSeries) List(ctx context.Context, includeUnpublished bool, seriesType string) ([]*domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Series
	for _, s := range r.series {
		if (s.Published || includeUnpublished) && (seriesType == "" || s.Type == seriesType) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSeries) GetByID(ctx context.Context, id string) (*domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.series[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSeries) GetByIDOrSlug(ctx context.Context, key string) (*domain.Series, error) {
	if s, _ := r.GetByID(ctx, key); s != nil {
		return s, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.series {
		if s.Slug == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSeries) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.series {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSeries) Create(ctx context.Context, s *domain.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.series {
		if existing.Slug == s.Slug {
			return &pq.Error{Code: "23505"}
		}
	}
	cp := *s
	r.series[s.ID] = &cp
	return nil
}

func (r *memSeries) Update(ctx context.Context, s *domain.Series) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[s.ID]; !ok {
		return false, nil
	}
	cp := *s
	r.series[s.ID] = &cp
	return true, nil
}

func (r *memSeries) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.series[id]
	delete(r.series, id)
	return ok, nil
}

func (r *memSeries) PublishedPosts(ctx context.Context, seriesID string) ([]domain.SeriesPost, error) {
	all, _ := r.posts.List(ctx, false)
	var out []domain.SeriesPost
	for _, p := range all {
		if p.SeriesID != nil && *p.SeriesID == seriesID {
			out = append(out, domain.SeriesPost{Post: *p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].SeriesOrder < *out[j].SeriesOrder })
	return out, nil
}

type memComments struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func (r *memComments) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memComments) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memComments) Create(ctx context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *memComments) Delete(ctx context.Context, postID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.comments {
		if c.ID == id && c.PostID == postID {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memLikes struct {
	mu    sync.Mutex
	likes map[string]map[string]bool
}

func newMemLikes() *memLikes {
	return &memLikes{likes: make(map[string]map[string]bool)}
}

func (r *memLikes) Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.LikeStatus{LikeCount: len(r.likes[postID]), Liked: r.likes[postID][clientKey]}, nil
}

func (r *memLikes) Toggle(ctx context.Context, postID, clientKey, newID string, at time.Time) (domain.LikeStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[string]bool)
	}
	liked := !r.likes[postID][clientKey]
	if liked {
		r.likes[postID][clientKey] = true
	} else {
		delete(r.likes[postID], clientKey)
	}
	return domain.LikeStatus{LikeCount: len(r.likes[postID]), Liked: liked}, nil
}
