// Package apierror is the error taxonomy shared by services and HTTP handlers.
// Services return *Error values (usually package-level sentinels); handlers call Write
// and never choose status codes themselves.
package apierror

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Kinds. Every *Error unwraps to exactly one of these.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrConfiguration   = errors.New("configuration error")
)

// InternalMessage is the body message for every 5xx response.
const InternalMessage = "Internal server error"

// Error carries a kind, the public message and optional per-field validation messages.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an *Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid returns a bad-request *Error with field messages.
func Invalid(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrBadRequest, Message: message, Fields: fields}
}

// Status maps err to an HTTP status code. Errors of unknown kind are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error envelope.
type Body struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Write renders err as a JSON error response. 5xx responses carry a generic message
// and the cause is logged with the request method and path.
func Write(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status := Status(err)
	body := Body{Error: InternalMessage}
	var apiErr *Error
	if status < http.StatusInternalServerError && errors.As(err, &apiErr) {
		body.Error = apiErr.Message
		body.Errors = apiErr.Fields
	}
	if status >= http.StatusInternalServerError && logger != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		// Correlates the log line with the otelhttp span when tracing is exported.
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		logger.Error("request failed", fields...)
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

// JSON renders v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// ErrInvalidJSON is returned by Decode for bodies that are not valid JSON.
var ErrInvalidJSON = New(ErrBadRequest, "Invalid JSON")

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrInvalidJSON
	}
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return ErrInvalidJSON
	}
	return nil
}
