package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
	"github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	Status     int    `json:"status"`
	DurationMs int64  `json:"duration_ms"`
}

// Telemetry emits an http_request event after each request. If emitter is nil, the middleware no-ops.
// skipPaths are not emitted (e.g. /healthz).
func Telemetry(emitter telemetry.EventEmitter, skipPaths map[string]bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if emitter == nil || skipPaths[r.URL.Path] {
				return
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			meta, _ := json.Marshal(httpRequestMetadata{
				Method:     r.Method,
				Route:      route,
				Status:     status,
				DurationMs: time.Since(start).Milliseconds(),
			})
			subject, _ := GetSubject(r.Context())
			sessionID, _ := GetSessionID(r.Context())
			telemetry.EmitAsync(emitter, &domain.Event{
				Type:      "http_request",
				Source:    "http_middleware",
				Actor:     subject,
				SessionID: sessionID,
				IP:        audit.ClientIPFromContext(r.Context()),
				Metadata:  meta,
				CreatedAt: time.Now().UTC(),
			}, logger)
		})
	}
}
