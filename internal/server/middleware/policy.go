package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/policy/engine"
)

// ErrUnauthorized is the body for requests the access policy denies.
var ErrUnauthorized = apierror.New(apierror.ErrUnauthorized, "Unauthorized")

// Authorize evaluates the access policy for every request. Denied requests get 401;
// evaluation failures get a generic 500.
func Authorize(evaluator engine.Evaluator, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, _ := GetSubject(r.Context())
			allowed, err := evaluator.Authorize(r.Context(), engine.Input{
				Method:        r.Method,
				Path:          r.URL.Path,
				Authenticated: IsAuthenticated(r.Context()),
				Subject:       subject,
			})
			if err != nil {
				apierror.Write(w, r, err, logger)
				return
			}
			if !allowed {
				apierror.Write(w, r, ErrUnauthorized, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
