package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	"github.com/jaehkim-quant/research-platform/internal/ratelimit"
)

const bearerPrefix = "bearer "

// SessionValidator resolves a session token to its subject and session id.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (subject, sessionID string, err error)
}

// ClientMeta stores the client address (rate-limit key) and User-Agent in the request context.
func ClientMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithClientIP(r.Context(), ratelimit.ClientKey(r))
		ctx = WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate validates the session cookie (or a Bearer token) and sets subject and session_id in context.
// It never rejects: requests without a valid session continue anonymously and Authorize decides access.
func Authenticate(validator SessionValidator, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			subject, sessionID, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				logger.Debug("auth: session rejected", zap.String("path", r.URL.Path), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), subject, sessionID)))
		})
	}
}

// SessionToken returns the session token from the named cookie, else from an Authorization Bearer header, else "".
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return extractBearer(r.Header.Get("Authorization"))
}

// extractBearer returns the Bearer token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
