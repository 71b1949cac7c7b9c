package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	"github.com/jaehkim-quant/research-platform/internal/content/service"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/ratelimit"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
	"github.com/jaehkim-quant/research-platform/internal/slug"
)

type stubPosts struct {
	gotAll   bool
	gotAdmin bool
	created  service.PostInput
	err      error
}

func (s *stubPosts) List(ctx context.Context, all bool) ([]*domain.Post, error) {
	s.gotAll = all
	return []*domain.Post{}, s.err
}

func (s *stubPosts) Get(ctx context.Context, id string, admin bool) (*domain.Post, error) {
	s.gotAdmin = admin
	if id != "p1" {
		return nil, service.ErrPostNotFound
	}
	return &domain.Post{ID: id, Title: "Momentum"}, nil
}

func (s *stubPosts) Create(ctx context.Context, in service.PostInput) (*domain.Post, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Post{ID: "new", Slug: "abc123def456"}, nil
}

func (s *stubPosts) Update(ctx context.Context, id string, in service.PostInput) (*domain.Post, error) {
	return &domain.Post{ID: id}, nil
}

func (s *stubPosts) Delete(ctx context.Context, id string) error { return nil }

func (s *stubPosts) RecordView(ctx context.Context, id string) (int, error) {
	if id != "p1" {
		return 0, service.ErrPostNotFound
	}
	return 42, nil
}

type stubSeries struct{ gotType string }

func (s *stubSeries) List(ctx context.Context, all bool, seriesType string) ([]*domain.Series, error) {
	s.gotType = seriesType
	return []*domain.Series{}, nil
}

func (s *stubSeries) Get(ctx context.Context, key string, admin bool) (*domain.SeriesDetail, error) {
	return &domain.SeriesDetail{Series: domain.Series{ID: "s1", Slug: key}, Posts: []domain.SeriesPost{}}, nil
}

func (s *stubSeries) Create(ctx context.Context, in service.SeriesInput) (*domain.Series, error) {
	return &domain.Series{ID: "s1"}, nil
}

func (s *stubSeries) Update(ctx context.Context, id string, in service.SeriesInput) (*domain.Series, error) {
	return &domain.Series{ID: id}, nil
}

func (s *stubSeries) Delete(ctx context.Context, id string) error { return service.ErrSeriesNotFound }

type stubComments struct{ created int }

func (s *stubComments) List(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return []*domain.Comment{}, nil
}

func (s *stubComments) Create(ctx context.Context, postID string, in service.CommentInput) (*domain.Comment, error) {
	s.created++
	return &domain.Comment{ID: "c1", PostID: postID, Name: in.Name, Content: in.Content}, nil
}

func (s *stubComments) Delete(ctx context.Context, postID, id string) error { return nil }

type stubLikes struct{ keys []string }

func (s *stubLikes) Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	return domain.LikeStatus{LikeCount: 3}, nil
}

func (s *stubLikes) Toggle(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	s.keys = append(s.keys, clientKey)
	return domain.LikeStatus{LikeCount: 4, Liked: true}, nil
}

type fixture struct {
	posts    *stubPosts
	series   *stubSeries
	comments *stubComments
	likes    *stubLikes
	router   http.Handler
}

func newFixture(admin bool) *fixture {
	f := &fixture{posts: &stubPosts{}, series: &stubSeries{}, comments: &stubComments{}, likes: &stubLikes{}}
	h := NewHandler(f.posts, f.series, f.comments, f.likes, nil)
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute, clock.NewFake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	r := chi.NewRouter()
	if admin {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), "admin", "sess-1")))
			})
		})
	}
	r.Get("/api/posts", h.ListPosts)
	r.Post("/api/posts", h.CreatePost)
	r.Get("/api/posts/{id}", h.GetPost)
	r.Put("/api/posts/{id}", h.UpdatePost)
	r.Delete("/api/posts/{id}", h.DeletePost)
	r.Post("/api/posts/{id}/view", h.RecordView)
	r.Get("/api/posts/{id}/comments", h.ListComments)
	r.With(ratelimit.Middleware(limiter, "comments")).Post("/api/posts/{id}/comments", h.CreateComment)
	r.Delete("/api/posts/{id}/comments/{commentId}", h.DeleteComment)
	r.Get("/api/posts/{id}/like", h.LikeStatus)
	r.Post("/api/posts/{id}/like", h.ToggleLike)
	r.Get("/api/series", h.ListSeries)
	r.Post("/api/series", h.CreateSeries)
	r.Get("/api/series/{id}", h.GetSeries)
	r.Delete("/api/series/{id}", h.DeleteSeries)
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListPosts_AllRequiresAdmin(t *testing.T) {
	f := newFixture(false)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/posts?all=true", "").Code)
	assert.False(t, f.posts.gotAll)

	f = newFixture(true)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/posts?all=true", "").Code)
	assert.True(t, f.posts.gotAll)
}

func TestGetPost(t *testing.T) {
	f := newFixture(true)
	rec := f.do(http.MethodGet, "/api/posts/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.posts.gotAdmin)
	assert.Contains(t, rec.Body.String(), `"title":"Momentum"`)

	rec = f.do(http.MethodGet, "/api/posts/zzz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, rec.Body.String())
}

func TestCreatePost(t *testing.T) {
	f := newFixture(true)
	rec := f.do(http.MethodPost, "/api/posts", `{"title":"Momentum","seriesId":null}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.posts.created.Title)
	assert.Equal(t, "Momentum", *f.posts.created.Title)
	assert.True(t, f.posts.created.SeriesID.Set)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/posts", `not json`).Code)

	f.posts.err = slug.ErrAllocationExhausted
	rec = f.do(http.MethodPost, "/api/posts", `{"title":"Momentum"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordView(t *testing.T) {
	f := newFixture(false)
	rec := f.do(http.MethodPost, "/api/posts/p1/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"viewCount":42}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/posts/nope/view", "").Code)
}

func TestCreateComment_RateLimited(t *testing.T) {
	f := newFixture(false)
	body := `{"name":"Ann","content":"Great post"}`
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/posts/p1/comments", body).Code)
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/posts/p1/comments", body).Code)
	rec := f.do(http.MethodPost, "/api/posts/p1/comments", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, f.comments.created)
}

func TestLikes_KeyedByClientAddress(t *testing.T) {
	f := newFixture(false)
	rec := f.do(http.MethodPost, "/api/posts/p1/like", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"likeCount":4,"liked":true}`, rec.Body.String())
	assert.Equal(t, []string{"198.51.100.9"}, f.likes.keys)

	rec = f.do(http.MethodGet, "/api/posts/p1/like", "")
	assert.JSONEq(t, `{"likeCount":3,"liked":false}`, rec.Body.String())
}

func TestSeriesRoutes(t *testing.T) {
	f := newFixture(false)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/series?type=book-notes", "").Code)
	assert.Equal(t, "book-notes", f.series.gotType)

	rec := f.do(http.MethodGet, "/api/series/factor-basics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"factor-basics"`)
	assert.Contains(t, rec.Body.String(), `"posts":[]`)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/series/s1", "").Code)
}
