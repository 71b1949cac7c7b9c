package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{New(ErrBadRequest, "x"), http.StatusBadRequest},
		{New(ErrUnauthorized, "x"), http.StatusUnauthorized},
		{New(ErrForbidden, "x"), http.StatusForbidden},
		{New(ErrNotFound, "x"), http.StatusNotFound},
		{New(ErrConflict, "x"), http.StatusConflict},
		{New(ErrTooManyRequests, "x"), http.StatusTooManyRequests},
		{New(ErrConfiguration, "x"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", New(ErrNotFound, "x")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "err=%v", tc.err)
	}
}

func TestWrite_ClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	Write(rec, req, Invalid("Invalid input", map[string]string{"name": "Name is required"}), zap.NewNop())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Error)
	assert.Equal(t, "Name is required", body.Errors["name"])
}

func TestWrite_InternalErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	Write(rec, req, errors.New("pq: connection refused"), zap.NewNop())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), InternalMessage)
}

func TestWrite_ConfigurationErrorHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-otp", nil)
	Write(rec, req, New(ErrConfiguration, "ADMIN_EMAIL missing"), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ADMIN_EMAIL")
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jo"}`))
	require.NoError(t, Decode(req, &v))
	assert.Equal(t, "Jo", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := Decode(req, &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestWrite_InternalErrorLogsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	traceID := trace.TraceID{0x0a, 0x0b, 0x0c}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{0x01}})
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req = req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))

	Write(httptest.NewRecorder(), req, errors.New("db down"), zap.New(core))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, traceID.String(), entries[0].ContextMap()["trace_id"])
}
