package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	"github.com/jaehkim-quant/research-platform/internal/devotp"
	"github.com/jaehkim-quant/research-platform/internal/mail"
	"github.com/jaehkim-quant/research-platform/internal/otp"
	otpdomain "github.com/jaehkim-quant/research-platform/internal/otp/domain"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/security"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
	sessiondomain "github.com/jaehkim-quant/research-platform/internal/session/domain"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
	telemetrydomain "github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses via apierror.
var (
	ErrMissingCredentials = apierror.New(apierror.ErrBadRequest, "Username and password are required")
	ErrMissingCode        = apierror.New(apierror.ErrBadRequest, "Username and code are required")
	ErrInvalidCredentials = apierror.New(apierror.ErrUnauthorized, "Invalid credentials")
	ErrInvalidOTP         = apierror.New(apierror.ErrUnauthorized, "Invalid or expired code")
	ErrInvalidSession     = apierror.New(apierror.ErrUnauthorized, "Unauthorized")
	ErrNotConfigured      = apierror.New(apierror.ErrConfiguration, "Server configuration error")
)

// AdminSubject is the subject of every admin session.
const AdminSubject = "admin"

// Admin holds the single admin account's configured credentials.
type Admin struct {
	Username     string
	PasswordHash string
	Email        string
}

func (a Admin) missing() []string {
	var out []string
	if a.Username == "" {
		out = append(out, "ADMIN_USERNAME")
	}
	if a.PasswordHash == "" {
		out = append(out, "ADMIN_PASSWORD_HASH")
	}
	if a.Email == "" {
		out = append(out, "ADMIN_EMAIL")
	}
	return out
}

// SessionResult is returned by VerifyOTP.
type SessionResult struct {
	Token     string
	SessionID string
	Subject   string
	ExpiresAt time.Time
}

// CodeRepo is the minimal login code repository needed by the auth service.
type CodeRepo interface {
	Issue(ctx context.Context, c *otpdomain.Code) error
	Consume(ctx context.Context, codeHash string, now time.Time) (*otpdomain.Code, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string, at time.Time) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// Option configures optional AuthService collaborators.
type Option func(*AuthService)

// WithDevStore keeps each issued plain code in store for GET /dev/otp.
func WithDevStore(store devotp.Store) Option {
	return func(s *AuthService) { s.devStore = store }
}

// WithAuditLogger records login events.
func WithAuditLogger(l audit.AuditLogger) Option {
	return func(s *AuthService) { s.audit = l }
}

// WithEventEmitter publishes auth telemetry events.
func WithEventEmitter(e telemetry.EventEmitter) Option {
	return func(s *AuthService) { s.events = e }
}

// WithClock replaces wall time, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *AuthService) { s.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *AuthService) { s.logger = l }
}

// AuthService implements the two-step admin login (password then emailed code), session checks and logout.
type AuthService struct {
	admin    Admin
	codes    CodeRepo
	sessions SessionRepo
	mailer   mail.Mailer
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	codeTTL  time.Duration
	devStore devotp.Store
	audit    audit.AuditLogger
	events   telemetry.EventEmitter
	clock    clock.Clock
	logger   *zap.Logger
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	admin Admin,
	codes CodeRepo,
	sessions SessionRepo,
	mailer mail.Mailer,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	codeTTL time.Duration,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		admin:    admin,
		codes:    codes,
		sessions: sessions,
		mailer:   mailer,
		hasher:   hasher,
		tokens:   tokens,
		codeTTL:  codeTTL,
		clock:    clock.Real{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestOTP checks the admin credentials and, on success, supersedes every earlier code,
// stores a new one and emails it to the admin address. Username and password mismatches return
// the same ErrInvalidCredentials and both run one bcrypt comparison.
func (s *AuthService) RequestOTP(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if missing := s.admin.missing(); len(missing) > 0 {
		s.logger.Error("auth: admin account not configured", zap.Strings("missing", missing))
		return ErrNotConfigured
	}
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passwordErr := s.hasher.Compare(s.admin.PasswordHash, []byte(password))
	if !usernameOK || passwordErr != nil {
		if passwordErr != nil && !errors.Is(passwordErr, security.ErrMismatchedPassword) {
			s.logger.Error("auth: stored admin password hash is unusable", zap.Error(passwordErr))
			return ErrNotConfigured
		}
		s.recordEvent(ctx, audit.ActionOTPRejected, telemetry.EventOTPRejected, "", nil)
		return ErrInvalidCredentials
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	now := s.clock.Now().UTC()
	rec := &otpdomain.Code{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		CodeHash:  otp.HashCode(code),
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.codes.Issue(ctx, rec); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if s.devStore != nil {
		s.devStore.Put(ctx, s.admin.Username, code, rec.ExpiresAt)
	}
	msg, err := mail.OTPMessage(s.admin.Email, code, s.codeTTL)
	if err != nil {
		return fmt.Errorf("render code email: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send code email: %w", err)
	}
	s.recordEvent(ctx, audit.ActionOTPRequested, telemetry.EventOTPRequested, AdminSubject, map[string]string{"code_id": rec.ID})
	return nil
}

// VerifyOTP consumes a live code and opens a session. Every rejection (wrong username, malformed,
// unknown, expired or already used code) returns ErrInvalidOTP. The code is looked up by value only.
func (s *AuthService) VerifyOTP(ctx context.Context, username, code string) (*SessionResult, error) {
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)
	if username == "" || code == "" {
		return nil, ErrMissingCode
	}
	if s.admin.Username == "" {
		s.logger.Error("auth: admin account not configured", zap.Strings("missing", []string{"ADMIN_USERNAME"}))
		return nil, ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) != 1 || !otp.ValidFormat(code) {
		s.recordEvent(ctx, audit.ActionLoginFailure, telemetry.EventLoginFailed, "", nil)
		return nil, ErrInvalidOTP
	}
	now := s.clock.Now().UTC()
	consumed, err := s.codes.Consume(ctx, otp.HashCode(code), now)
	if err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}
	if consumed == nil {
		s.recordEvent(ctx, audit.ActionLoginFailure, telemetry.EventLoginFailed, "", nil)
		return nil, ErrInvalidOTP
	}
	if s.devStore != nil {
		s.devStore.Delete(ctx, s.admin.Username)
	}

	sessionID := uuid.New().String()
	token, expiresAt, err := s.tokens.IssueSession(sessionID, AdminSubject, now)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	sess := &sessiondomain.Session{
		ID:        sessionID,
		Subject:   AdminSubject,
		TokenHash: security.HashToken(token),
		IPAddress: audit.ClientIPFromContext(ctx),
		UserAgent: middleware.GetUserAgent(ctx),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.recordEvent(middleware.WithIdentity(ctx, AdminSubject, sessionID),
		audit.ActionLoginSuccess, telemetry.EventLoginSucceeded, AdminSubject, map[string]string{"session_id": sessionID})
	return &SessionResult{Token: token, SessionID: sessionID, Subject: AdminSubject, ExpiresAt: expiresAt}, nil
}

// ValidateSession checks the token signature and claims, then that its session row is live and
// bound to this exact token. It implements middleware.SessionValidator.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (string, string, error) {
	if token == "" {
		return "", "", ErrInvalidSession
	}
	claims, err := s.tokens.ValidateSession(token)
	if err != nil {
		return "", "", ErrInvalidSession
	}
	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return "", "", err
	}
	now := s.clock.Now().UTC()
	if sess == nil || !sess.Active(now) || !security.TokenHashEqual(token, sess.TokenHash) {
		return "", "", ErrInvalidSession
	}
	if err := s.sessions.UpdateLastSeen(ctx, sess.ID, now); err != nil {
		s.logger.Warn("auth: update last seen failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return sess.Subject, sess.ID, nil
}

// Logout revokes the session the token belongs to. Invalid or unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ValidateSession(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.recordEvent(middleware.WithIdentity(ctx, claims.Subject, claims.SessionID),
		audit.ActionLogout, telemetry.EventLogout, claims.Subject, map[string]string{"session_id": claims.SessionID})
	return nil
}

func (s *AuthService) recordEvent(ctx context.Context, action, eventType, actor string, meta map[string]string) {
	var raw []byte
	if len(meta) > 0 {
		raw, _ = json.Marshal(meta)
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, actor, action, "session", string(raw))
	}
	sessionID, _ := middleware.GetSessionID(ctx)
	telemetry.EmitAsync(s.events, &telemetrydomain.Event{
		Type:      eventType,
		Source:    "auth",
		Actor:     actor,
		SessionID: sessionID,
		IP:        audit.ClientIPFromContext(ctx),
		Metadata:  raw,
		CreatedAt: s.clock.Now().UTC(),
	}, s.logger)
}
