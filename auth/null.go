package auth

import (
	"context"
	"net/http"
)

// pathRules gives every variant the shared RequireAuth behavior.
type pathRules struct{}

func (pathRules) RequireAuth(path string, excluded []string) bool {
	return RequireAuth(path, excluded)
}

// NullAuth applies path rules and reads the Authorization header but never
// resolves a principal.
type NullAuth struct {
	pathRules
}

func NewNull(Config) *NullAuth { return &NullAuth{} }

func (*NullAuth) Kind() Kind { return KindNull }

func (*NullAuth) ExtractCredential(r *http.Request) (Credential, bool) {
	h, ok := authorizationHeader(r)
	if !ok {
		return Credential{}, false
	}
	return Credential{Scheme: SchemeNone, Raw: h}, true
}

func (*NullAuth) ResolvePrincipal(context.Context, Credential) (Principal, bool) {
	return Principal{}, false
}
