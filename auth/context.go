package auth

import (
	"context"
)

type ctxKey string

var ctxPrincipalKey ctxKey = "auth.principal"

// FromContext retrieves the principal injected by Guard.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(Principal)
	return p, ok
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}
