package sessionkit

import "context"

type clientIDContextKey struct{}
type clientIPContextKey struct{}
type userAgentContextKey struct{}

// WithClientID attaches the caller's client identifier to ctx. The Engine
// scopes the durable session pointer by client ID; requests without one
// share the default slot "0".
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey{}, clientID)
}

// WithClientIP attaches the caller's IP address to ctx. Used for per-IP
// login/signup throttling and audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for audit
// records.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func clientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return "0"
	}

	clientID, _ := ctx.Value(clientIDContextKey{}).(string)
	if clientID == "" {
		return "0"
	}

	return clientID
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
