package audit

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit/domain"
	auditrepo "github.com/jaehkim-quant/research-platform/internal/audit/repository"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
)

// Audit actions recorded outside the route-derived mapping.
const (
	ActionOTPRequested     = "otp_requested"
	ActionOTPRejected      = "otp_request_rejected"
	ActionLoginSuccess     = "login_success"
	ActionLoginFailure     = "login_failure"
	ActionLogout           = "logout"
	ActionContactSubmitted = "contact_submitted"
)

// AnonymousActor is recorded when no authenticated subject is known.
const AnonymousActor = "anonymous"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

type ipKey struct{}

// WithClientIP returns a context carrying the client IP for audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIPFromContext is the default IPExtractor. Returns "unknown" when no IP was attached.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ipKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, actor, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	clock       clock.Clock
	logger      *zap.Logger
}

// NewLogger returns an AuditLogger that persists to repo. ipExtractor may be nil; then ClientIPFromContext is used.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, clk clock.Clock, logger *zap.Logger) *Logger {
	if ipExtractor == nil {
		ipExtractor = ClientIPFromContext
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, clock: clk, logger: logger}
}

// LogEvent writes one audit log entry. Errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, actor, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	if actor == "" {
		actor = AnonymousActor
	}
	now := l.clock.Now().UTC()
	entry := &domain.AuditLog{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Actor:     actor,
		Action:    action,
		Resource:  resource,
		IP:        l.ipExtractor(ctx),
		Metadata:  metadata,
		CreatedAt: now,
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Error("audit: failed to log event",
			zap.String("action", action), zap.String("resource", resource), zap.Error(err))
	}
}
