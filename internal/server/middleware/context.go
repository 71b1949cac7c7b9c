package middleware

import "context"

type contextKey struct{ name string }

var (
	subjectKey   = contextKey{"subject"}
	sessionIDKey = contextKey{"session_id"}
	userAgentKey = contextKey{"user_agent"}
)

// WithIdentity returns a context with the authenticated subject and session_id set.
// Handlers and the auth service read these via GetSubject and GetSessionID.
func WithIdentity(ctx context.Context, subject, sessionID string) context.Context {
	ctx = context.WithValue(ctx, subjectKey, subject)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetSubject returns the subject from context and true if set; otherwise "", false.
func GetSubject(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// IsAuthenticated reports whether an admin session was attached to ctx.
func IsAuthenticated(ctx context.Context) bool {
	id, ok := GetSessionID(ctx)
	return ok && id != ""
}

// WithUserAgent returns a context carrying the request's User-Agent.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}

// GetUserAgent returns the User-Agent stored by ClientMeta, or "".
func GetUserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey).(string)
	return v
}
