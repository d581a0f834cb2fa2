package gate

import "context"

type contextKey struct{ name string }

var bearerTokenKey = contextKey{"bearer_token"}

// WithBearerToken records the validated bearer token on the context so
// downstream layers can mint per-request Box clients.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerFromContext returns the validated bearer token, if any.
func BearerFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok && token != ""
}
