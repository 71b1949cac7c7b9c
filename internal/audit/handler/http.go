// Package handler serves the admin audit log listing.
package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit/domain"
	auditrepo "github.com/jaehkim-quant/research-platform/internal/audit/repository"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var errInvalidPagination = apierror.New(apierror.ErrBadRequest, "limit and offset must be non-negative integers")

// Handler lists audit logs for admins.
type Handler struct {
	repo   auditrepo.Repository
	logger *zap.Logger
}

func NewHandler(repo auditrepo.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

type listResponse struct {
	Logs   []*domain.AuditLog `json:"logs"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// List handles GET /api/admin/audit-logs?limit=&offset=. limit defaults to 50 and is capped at 200.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultPageSize)
	if !ok {
		apierror.Write(w, r, errInvalidPagination, h.logger)
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		apierror.Write(w, r, errInvalidPagination, h.logger)
		return
	}
	switch {
	case limit == 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	logs, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		apierror.Write(w, r, err, h.logger)
		return
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	apierror.JSON(w, r, http.StatusOK, listResponse{Logs: logs, Limit: limit, Offset: offset})
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
