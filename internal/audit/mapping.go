package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// routeOverrides maps "METHOD pattern" to a fixed action/resource where the generic rule reads badly.
var routeOverrides = map[string]ActionResource{
	"POST /api/posts/{id}/view":  {Action: "view", Resource: "post"},
	"POST /api/posts/{id}/like":  {Action: "toggle", Resource: "like"},
	"PATCH /api/contact/{id}":    {Action: "mark_read", Resource: "contact"},
	"POST /api/auth/logout":      {Action: ActionLogout, Resource: "session"},
	"POST /api/auth/verify-otp":  {Action: "verify_otp", Resource: "session"},
	"POST /api/auth/request-otp": {Action: "request_otp", Resource: "otp"},
}

// ParseRoute returns action and resource for an HTTP method and chi route pattern
// (e.g. DELETE /api/posts/{id}/comments/{commentId} -> delete/comment).
// Resource is the last literal path segment, singularised; action follows the method,
// with GET on a collection reported as "list".
func ParseRoute(method, pattern string) ActionResource {
	method = strings.ToUpper(method)
	if ar, ok := routeOverrides[method+" "+pattern]; ok {
		return ar
	}
	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	resource := ""
	trailingParam := false
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || seg == "*" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			if i == len(segments)-1 {
				trailingParam = true
			}
			continue
		}
		if seg == "api" {
			break
		}
		resource = singular(seg)
		break
	}
	if resource == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method, trailingParam), Resource: resource}
}

func singular(segment string) string {
	s := strings.ReplaceAll(segment, "-", "_")
	switch {
	case s == "series":
		return s
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

func methodToAction(method string, item bool) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		if item {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
