// Package handler serves the blog content API: posts, series, comments, likes and views.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	"github.com/jaehkim-quant/research-platform/internal/content/service"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/ratelimit"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
)

type PostService interface {
	List(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error)
	Get(ctx context.Context, id string, admin bool) (*domain.Post, error)
	Create(ctx context.Context, in service.PostInput) (*domain.Post, error)
	Update(ctx context.Context, id string, in service.PostInput) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	RecordView(ctx context.Context, id string) (int, error)
}

type SeriesService interface {
	List(ctx context.Context, includeUnpublished bool, seriesType string) ([]*domain.Series, error)
	Get(ctx context.Context, key string, admin bool) (*domain.SeriesDetail, error)
	Create(ctx context.Context, in service.SeriesInput) (*domain.Series, error)
	Update(ctx context.Context, id string, in service.SeriesInput) (*domain.Series, error)
	Delete(ctx context.Context, id string) error
}

type CommentService interface {
	List(ctx context.Context, postID string) ([]*domain.Comment, error)
	Create(ctx context.Context, postID string, in service.CommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, postID, id string) error
}

type LikeService interface {
	Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error)
	Toggle(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error)
}

// Handler maps content routes to the services.
type Handler struct {
	posts    PostService
	series   SeriesService
	comments CommentService
	likes    LikeService
	logger   *zap.Logger
}

func NewHandler(posts PostService, series SeriesService, comments CommentService, likes LikeService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{posts: posts, series: series, comments: comments, likes: likes, logger: logger}
}

type successResponse struct {
	Success bool `json:"success"`
}

type viewResponse struct {
	ViewCount int `json:"viewCount"`
}

// includeUnpublished is true only for admins asking with ?all=true.
func includeUnpublished(r *http.Request) bool {
	return r.URL.Query().Get("all") == "true" && middleware.IsAuthenticated(r.Context())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apierror.Write(w, r, err, h.logger)
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), includeUnpublished(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, posts)
}

// CreatePost handles POST /api/posts (admin).
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := apierror.Decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.posts.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusCreated, p)
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"), middleware.IsAuthenticated(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, p)
}

// UpdatePost handles PUT /api/posts/{id} (admin).
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := apierror.Decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, p)
}

// DeletePost handles DELETE /api/posts/{id} (admin).
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// RecordView handles POST /api/posts/{id}/view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	n, err := h.posts.RecordView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, viewResponse{ViewCount: n})
}

// ListSeries handles GET /api/series?type=.
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := h.series.List(r.Context(), includeUnpublished(r), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, list)
}

// CreateSeries handles POST /api/series (admin).
func (h *Handler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var in service.SeriesInput
	if err := apierror.Decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sr, err := h.series.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusCreated, sr)
}

// GetSeries handles GET /api/series/{id}; the parameter may also be a slug.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	detail, err := h.series.Get(r.Context(), chi.URLParam(r, "id"), middleware.IsAuthenticated(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, detail)
}

// UpdateSeries handles PUT /api/series/{id} (admin).
func (h *Handler) UpdateSeries(w http.ResponseWriter, r *http.Request) {
	var in service.SeriesInput
	if err := apierror.Decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sr, err := h.series.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, sr)
}

// DeleteSeries handles DELETE /api/series/{id} (admin).
func (h *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	if err := h.series.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// ListComments handles GET /api/posts/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, list)
}

// CreateComment handles POST /api/posts/{id}/comments. Rate limiting is applied by the router.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := apierror.Decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.comments.Create(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusCreated, c)
}

// DeleteComment handles DELETE /api/posts/{id}/comments/{commentId} (admin).
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentId")); err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// LikeStatus handles GET /api/posts/{id}/like.
func (h *Handler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.likes.Status(r.Context(), chi.URLParam(r, "id"), ratelimit.ClientKey(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, st)
}

// ToggleLike handles POST /api/posts/{id}/like. Rate limiting is applied by the router.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	st, err := h.likes.Toggle(r.Context(), chi.URLParam(r, "id"), ratelimit.ClientKey(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	apierror.JSON(w, r, http.StatusOK, st)
}
