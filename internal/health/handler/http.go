package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

type statusResponse struct {
	Status string `json:"status"`
}

// HTTPHandler serves GET /healthz.
type HTTPHandler struct {
	checker *Checker
	logger  *zap.Logger
}

func NewHTTPHandler(checker *Checker, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{checker: checker, logger: logger}
}

// ServeHTTP responds 200 {"status":"ok"} or 503 {"status":"unavailable"}.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Check(r.Context()); err != nil {
		h.logger.Warn("health: not ready", zap.Error(err))
		apierror.JSON(w, r, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}
	apierror.JSON(w, r, http.StatusOK, statusResponse{Status: "ok"})
}
