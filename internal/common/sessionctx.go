package common

import "context"

type contextKey int

const sessionIDKey contextKey = iota

// WithSessionID stores the authenticated session ID in the request context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext returns the session ID, or "" when the request is anonymous.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
