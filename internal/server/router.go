package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	audithandler "github.com/jaehkim-quant/research-platform/internal/audit/handler"
	contacthandler "github.com/jaehkim-quant/research-platform/internal/contact/handler"
	contenthandler "github.com/jaehkim-quant/research-platform/internal/content/handler"
	devotphandler "github.com/jaehkim-quant/research-platform/internal/devotp/handler"
	identityhandler "github.com/jaehkim-quant/research-platform/internal/identity/handler"
	"github.com/jaehkim-quant/research-platform/internal/policy/engine"
	"github.com/jaehkim-quant/research-platform/internal/ratelimit"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
)

// HealthPath is served without telemetry events.
const HealthPath = "/healthz"

// Limiters holds one limiter per guarded route group so budgets do not interfere.
// A nil limiter leaves its group unlimited.
type Limiters struct {
	Auth     ratelimit.Limiter
	Contact  ratelimit.Limiter
	Comments ratelimit.Limiter
	Likes    ratelimit.Limiter
}

// Deps holds the handlers and cross-cutting dependencies of the HTTP API.
type Deps struct {
	Auth      *identityhandler.Handler
	Contact   *contacthandler.Handler
	Content   *contenthandler.Handler
	AuditLogs *audithandler.Handler
	Health    http.Handler
	// DevOTP is mounted at /dev/otp when non-nil. Set only in dev OTP mode outside production.
	DevOTP *devotphandler.Handler

	Sessions    middleware.SessionValidator
	CookieName  string
	Policy      engine.Evaluator
	AuditLogger audit.AuditLogger
	Events      telemetry.EventEmitter
	Limiters    Limiters
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the HTTP API. Middleware order: recovery, CORS, client metadata, session
// authentication, telemetry, access policy, admin audit.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.ClientMeta)
	if deps.Sessions != nil {
		r.Use(middleware.Authenticate(deps.Sessions, deps.CookieName, logger))
	}
	r.Use(middleware.Telemetry(deps.Events, map[string]bool{HealthPath: true}, logger))
	if deps.Policy != nil {
		r.Use(middleware.Authorize(deps.Policy, logger))
	}
	r.Use(middleware.Audit(deps.AuditLogger))

	if deps.Health != nil {
		r.Method(http.MethodGet, HealthPath, deps.Health)
	}
	if deps.DevOTP != nil {
		r.Get("/dev/otp", deps.DevOTP.GetOTP)
	}

	r.Route("/api", func(r chi.Router) {
		if h := deps.Auth; h != nil {
			r.Route("/auth", func(r chi.Router) {
				r.With(limit(deps.Limiters.Auth, "auth")...).Post("/request-otp", h.RequestOTP)
				r.With(limit(deps.Limiters.Auth, "auth")...).Post("/verify-otp", h.VerifyOTP)
				r.Post("/logout", h.Logout)
				r.Get("/session", h.Session)
			})
		}
		if h := deps.Contact; h != nil {
			r.With(limit(deps.Limiters.Contact, "contact")...).Post("/contact", h.Submit)
			r.Get("/contact", h.List)
			r.Patch("/contact/{id}", h.MarkRead)
			r.Delete("/contact/{id}", h.Delete)
		}
		if h := deps.Content; h != nil {
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.ListPosts)
				r.Post("/", h.CreatePost)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetPost)
					r.Put("/", h.UpdatePost)
					r.Delete("/", h.DeletePost)
					r.Post("/view", h.RecordView)
					r.Get("/comments", h.ListComments)
					r.With(limit(deps.Limiters.Comments, "comments")...).Post("/comments", h.CreateComment)
					r.Delete("/comments/{commentId}", h.DeleteComment)
					r.Get("/like", h.LikeStatus)
					r.With(limit(deps.Limiters.Likes, "likes")...).Post("/like", h.ToggleLike)
				})
			})
			r.Route("/series", func(r chi.Router) {
				r.Get("/", h.ListSeries)
				r.Post("/", h.CreateSeries)
				r.Get("/{id}", h.GetSeries)
				r.Put("/{id}", h.UpdateSeries)
				r.Delete("/{id}", h.DeleteSeries)
			})
		}
		if h := deps.AuditLogs; h != nil {
			r.Get("/admin/audit-logs", h.List)
		}
	})

	return otelhttp.NewHandler(r, "research-platform",
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != HealthPath }),
	)
}

func limit(l ratelimit.Limiter, scope string) []func(http.Handler) http.Handler {
	if l == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{ratelimit.Middleware(l, scope)}
}
