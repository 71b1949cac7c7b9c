// Package handler serves /api/contact.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/contact"
	"github.com/jaehkim-quant/research-platform/internal/contact/domain"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

// Service is the part of contact.Service used by the handler.
type Service interface {
	Submit(ctx context.Context, sub contact.Submission) (*domain.Inquiry, error)
	List(ctx context.Context) ([]*domain.Inquiry, error)
	MarkRead(ctx context.Context, id string, read bool) (*domain.Inquiry, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type successResponse struct {
	Success bool `json:"success"`
}

type markReadRequest struct {
	Read *bool `json:"read"`
}

// Submit handles POST /api/contact. Rate limiting is applied by the router.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := apierror.Decode(r, &sub); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	if _, err := h.svc.Submit(r.Context(), sub); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}

// List handles GET /api/contact (admin).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	apierror.JSON(w, r, http.StatusOK, list)
}

// MarkRead handles PATCH /api/contact/{id} (admin). An absent read field means true.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if r.ContentLength != 0 {
		if err := apierror.Decode(r, &req); err != nil {
			apierror.Write(w, r, err, h.logger)
			return
		}
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}
	inq, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), read)
	if err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	apierror.JSON(w, r, http.StatusOK, inq)
}

// Delete handles DELETE /api/contact/{id} (admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	apierror.JSON(w, r, http.StatusOK, successResponse{Success: true})
}
