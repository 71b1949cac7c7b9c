package engine

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func newEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background(), "", zap.NewNop())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	if err := newEvaluator(t).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	e := newEvaluator(t)
	testCases := []struct {
		method, path string
		authed       bool
		want         bool
	}{
		{"GET", "/api/posts", false, true},
		{"GET", "/api/posts/abc", false, true},
		{"GET", "/api/series/intro", false, true},
		{"GET", "/api/auth/session", false, true},
		{"GET", "/healthz", false, true},
		{"POST", "/api/contact", false, true},
		{"POST", "/api/auth/request-otp", false, true},
		{"POST", "/api/auth/verify-otp", false, true},
		{"POST", "/api/posts/abc/comments", false, true},
		{"POST", "/api/posts/abc/like", false, true},
		{"POST", "/api/posts/abc/view", false, true},
		{"GET", "/api/contact", false, false},
		{"GET", "/api/admin/audit-logs", false, false},
		{"POST", "/api/posts", false, false},
		{"PUT", "/api/posts/abc", false, false},
		{"DELETE", "/api/posts/abc/comments/c1", false, false},
		{"PATCH", "/api/contact/i1", false, false},
		{"POST", "/api/posts", true, true},
		{"GET", "/api/admin/audit-logs", true, true},
		{"DELETE", "/api/contact/i1", true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			got, err := e.Authorize(context.Background(), Input{Method: tc.method, Path: tc.path, Authenticated: tc.authed})
			if err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if got != tc.want {
				t.Errorf("Authorize = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewOPAEvaluator_InvalidModule(t *testing.T) {
	if _, err := NewOPAEvaluator(context.Background(), "package broken\nallow if {", zap.NewNop()); err == nil {
		t.Fatal("NewOPAEvaluator should reject an invalid module")
	}
}

func TestLoadOPAEvaluator_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deny.rego")
	if err := os.WriteFile(path, []byte("package research.access\n\ndefault allow := false\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := LoadOPAEvaluator(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("LoadOPAEvaluator: %v", err)
	}
	got, err := e.Authorize(context.Background(), Input{Method: "GET", Path: "/api/posts"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if got {
		t.Error("deny-all policy allowed GET /api/posts")
	}

	if _, err := LoadOPAEvaluator(context.Background(), filepath.Join(t.TempDir(), "missing.rego"), nil); err == nil {
		t.Error("LoadOPAEvaluator should fail for a missing file")
	}
}

func TestSegments(t *testing.T) {
	if got := segments("/api//posts/x/"); !reflect.DeepEqual(got, []string{"api", "posts", "x"}) {
		t.Errorf("segments = %v", got)
	}
	if got := segments("/"); len(got) != 0 {
		t.Errorf("segments(/) = %v, want empty", got)
	}
}
