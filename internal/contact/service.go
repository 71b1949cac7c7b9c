// Package contact handles public contact form submissions and the admin inquiry inbox.
package contact

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	"github.com/jaehkim-quant/research-platform/internal/contact/domain"
	contactrepo "github.com/jaehkim-quant/research-platform/internal/contact/repository"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
	telemetrydomain "github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

// Field limits, counted in characters after trimming.
const (
	NameMin    = 2
	NameMax    = 30
	MessageMin = 5
	MessageMax = 1000
	SubjectMax = 200
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrHoneypot is returned when the hidden form field was filled in.
	ErrHoneypot = apierror.New(apierror.ErrBadRequest, "Invalid request")
	// ErrInquiryNotFound is returned by admin operations on unknown ids.
	ErrInquiryNotFound = apierror.New(apierror.ErrNotFound, "Not found")
)

// Submission is the raw contact form as posted.
type Submission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Purpose  string `json:"purpose"`
	Subject  string `json:"subject"`
	Slug     string `json:"slug"`
	PageURL  string `json:"pageUrl"`
	Honeypot string `json:"honeypot"`
}

// Validate trims the submission in place and returns field errors, or nil.
func (s *Submission) Validate() map[string]string {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Purpose = strings.ToLower(strings.TrimSpace(s.Purpose))
	if s.Purpose == "" {
		s.Purpose = domain.PurposeGeneral
	}

	errs := make(map[string]string)
	if n := utf8.RuneCountInString(s.Name); n < NameMin || n > NameMax {
		errs["name"] = "Name must be 2–30 characters and not only spaces."
	}
	if !emailPattern.MatchString(s.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if n := utf8.RuneCountInString(s.Message); n < MessageMin || n > MessageMax {
		errs["message"] = "Message must be 5–1000 characters."
	}
	if utf8.RuneCountInString(s.Subject) > SubjectMax {
		errs["subject"] = "Subject must be at most 200 characters."
	}
	if !domain.ValidPurpose(s.Purpose) {
		errs["purpose"] = "Unknown purpose."
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Service accepts submissions into a Sink and manages stored inquiries.
type Service struct {
	sink   Sink
	repo   contactrepo.Repository
	audit  audit.AuditLogger
	events telemetry.EventEmitter
	clock  clock.Clock
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithAuditLogger(l audit.AuditLogger) Option {
	return func(s *Service) { s.audit = l }
}

func WithEventEmitter(e telemetry.EventEmitter) Option {
	return func(s *Service) { s.events = e }
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a contact service. repo backs the admin inbox regardless of the sink.
func NewService(sink Sink, repo contactrepo.Repository, opts ...Option) *Service {
	s := &Service{sink: sink, repo: repo, clock: clock.Real{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub and hands it to the sink. A filled honeypot is rejected before validation
// and never reaches the sink.
func (s *Service) Submit(ctx context.Context, sub Submission) (*domain.Inquiry, error) {
	if sub.Honeypot != "" {
		s.logger.Info("contact: honeypot triggered", zap.String("client_ip", audit.ClientIPFromContext(ctx)))
		return nil, ErrHoneypot
	}
	if fields := sub.Validate(); fields != nil {
		return nil, apierror.Invalid("Invalid input", fields)
	}
	now := s.clock.Now().UTC()
	inq := &domain.Inquiry{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Purpose:   sub.Purpose,
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		Slug:      sub.Slug,
		PageURL:   sub.PageURL,
		CreatedAt: now,
	}
	if err := s.sink.Deliver(ctx, inq); err != nil {
		return nil, err
	}
	s.recordSubmitted(ctx, inq)
	return inq, nil
}

func (s *Service) recordSubmitted(ctx context.Context, inq *domain.Inquiry) {
	raw, _ := json.Marshal(map[string]string{"inquiry_id": inq.ID, "purpose": inq.Purpose, "slug": inq.Slug})
	if s.audit != nil {
		s.audit.LogEvent(ctx, audit.AnonymousActor, audit.ActionContactSubmitted, "contact", string(raw))
	}
	telemetry.EmitAsync(s.events, &telemetrydomain.Event{
		Type:      telemetry.EventContactSubmitted,
		Source:    "contact",
		Actor:     audit.AnonymousActor,
		IP:        audit.ClientIPFromContext(ctx),
		Metadata:  raw,
		CreatedAt: inq.CreatedAt,
	}, s.logger)
}

// List returns stored inquiries, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.Inquiry, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Inquiry{}
	}
	return list, nil
}

// MarkRead sets the read flag on an inquiry.
func (s *Service) MarkRead(ctx context.Context, id string, read bool) (*domain.Inquiry, error) {
	inq, err := s.repo.MarkRead(ctx, id, read)
	if err != nil {
		return nil, err
	}
	if inq == nil {
		return nil, ErrInquiryNotFound
	}
	return inq, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInquiryNotFound
	}
	return nil
}
