package ctxutil

import "context"

type sessionKey struct{}

// WithSessionID attaches the opaque guide-scoping session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func SessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(sessionKey{}).(string); ok {
		return s
	}
	return ""
}
