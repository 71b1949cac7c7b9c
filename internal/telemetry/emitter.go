package telemetry

import (
	"context"
	"errors"

	"github.com/jaehkim-quant/research-platform/internal/telemetry/domain"
)

// Event types emitted by the platform.
const (
	EventOTPRequested     = "auth.otp_requested"
	EventOTPRejected      = "auth.otp_request_rejected"
	EventLoginSucceeded   = "auth.login_succeeded"
	EventLoginFailed      = "auth.login_failed"
	EventLogout           = "auth.logout"
	EventContactSubmitted = "contact.submitted"
	EventPostCreated      = "content.post_created"
	EventSeriesCreated    = "content.series_created"
	EventCommentCreated   = "content.comment_created"
)

// EventEmitter emits telemetry events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// Multi fans an event out to every non-nil emitter. All emitters are attempted; errors are joined.
func Multi(emitters ...EventEmitter) EventEmitter {
	out := make(multiEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type multiEmitter []EventEmitter

func (m multiEmitter) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
