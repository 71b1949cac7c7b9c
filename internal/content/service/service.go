// Package service implements the blog content operations behind /api/posts and /api/series.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	"github.com/jaehkim-quant/research-platform/internal/db"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/server/middleware"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
	telemetrydomain "github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

var (
	ErrPostNotFound    = apierror.New(apierror.ErrNotFound, "Post not found")
	ErrSeriesNotFound  = apierror.New(apierror.ErrNotFound, "Series not found")
	ErrCommentNotFound = apierror.New(apierror.ErrNotFound, "Comment not found")
	ErrSlugTaken       = apierror.New(apierror.ErrConflict, "Slug already in use")
	ErrTitleRequired   = apierror.New(apierror.ErrBadRequest, "Title is required")
	ErrInvalidLevel    = apierror.New(apierror.ErrBadRequest, "Unknown level")
	ErrInvalidType     = apierror.New(apierror.ErrBadRequest, "Unknown series type")
	ErrInvalidDate     = apierror.New(apierror.ErrBadRequest, "Invalid date")
	ErrUnknownSeries   = apierror.New(apierror.ErrBadRequest, "Unknown series")
)

// Optional distinguishes an absent JSON field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Option configures the content services.
type Option func(*base)

type base struct {
	events telemetry.EventEmitter
	clock  clock.Clock
	logger *zap.Logger
}

func newBase(opts []Option) base {
	b := base{clock: clock.Real{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func WithEventEmitter(e telemetry.EventEmitter) Option {
	return func(b *base) { b.events = e }
}

func WithClock(c clock.Clock) Option {
	return func(b *base) {
		if c != nil {
			b.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

func (b *base) now() time.Time {
	return b.clock.Now().UTC()
}

func (b *base) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

func (b *base) emit(ctx context.Context, eventType string, meta map[string]string) {
	raw, _ := json.Marshal(meta)
	actor := audit.AnonymousActor
	if subject, ok := middleware.GetSubject(ctx); ok && subject != "" {
		actor = subject
	}
	sessionID, _ := middleware.GetSessionID(ctx)
	telemetry.EmitAsync(b.events, &telemetrydomain.Event{
		Type:      eventType,
		Source:    "content",
		Actor:     actor,
		SessionID: sessionID,
		IP:        audit.ClientIPFromContext(ctx),
		Metadata:  raw,
		CreatedAt: b.now(),
	}, b.logger)
}

// translateWrite maps unique violations on slug columns to ErrSlugTaken.
func translateWrite(err error) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
