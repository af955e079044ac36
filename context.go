package authcore

import "context"

type identityContextKey struct{}

// Identity is the authenticated principal attached to a request context by
// the middleware package.
type Identity struct {
	// Subject is the verified identity string.
	Subject string
	// Method is "jwt" or "token".
	Method string
}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
