package ratelimit

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
)

// UnknownClient is the shared bucket for requests without forwarding headers.
const UnknownClient = "unknown"

// ErrRateLimited is written when a client exceeds its budget.
var ErrRateLimited = apierror.New(apierror.ErrTooManyRequests, "Too many requests")

// ClientKey derives the limiter key: first X-Forwarded-For entry, then X-Real-IP, then UnknownClient.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if s := strings.TrimSpace(first); s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	return UnknownClient
}

// Middleware rejects requests over the limit with 429 before the handler reads the body.
// scope labels the denial counter.
func Middleware(l Limiter, scope string) func(http.Handler) http.Handler {
	denied, err := otel.Meter("research-platform/ratelimit").Int64Counter(
		"ratelimit.denied",
		metric.WithDescription("Requests rejected by the rate limiter"),
	)
	if err != nil {
		otel.Handle(err)
	}
	attrs := metric.WithAttributes(attribute.String("scope", scope))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), ClientKey(r)) {
				if denied != nil {
					denied.Add(r.Context(), 1, attrs)
				}
				apierror.Write(w, r, ErrRateLimited, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
