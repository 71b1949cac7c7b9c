package audit

import "testing"

func TestParseRoute(t *testing.T) {
	testCases := []struct {
		method, pattern  string
		action, resource string
	}{
		{"GET", "/api/posts", "list", "post"},
		{"GET", "/api/posts/{id}", "get", "post"},
		{"POST", "/api/posts", "create", "post"},
		{"PUT", "/api/posts/{id}", "update", "post"},
		{"DELETE", "/api/posts/{id}", "delete", "post"},
		{"POST", "/api/series", "create", "series"},
		{"DELETE", "/api/series/{id}", "delete", "series"},
		{"DELETE", "/api/posts/{id}/comments/{commentId}", "delete", "comment"},
		{"GET", "/api/contact", "list", "contact"},
		{"DELETE", "/api/contact/{id}", "delete", "contact"},
		{"PATCH", "/api/contact/{id}", "mark_read", "contact"},
		{"GET", "/api/admin/audit-logs", "list", "audit_log"},
		{"post", "/api/auth/logout", ActionLogout, "session"},
		{"POST", "/api/posts/{id}/like", "toggle", "like"},
		{"GET", "/api/inquiries", "list", "inquiry"},
		{"GET", "/api", "unknown", "unknown"},
		{"GET", "", "unknown", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.pattern, func(t *testing.T) {
			ar := ParseRoute(tc.method, tc.pattern)
			if ar.Action != tc.action {
				t.Errorf("action = %q, want %q", ar.Action, tc.action)
			}
			if ar.Resource != tc.resource {
				t.Errorf("resource = %q, want %q", ar.Resource, tc.resource)
			}
		})
	}
}
