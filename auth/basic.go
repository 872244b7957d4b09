package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// BasicAuth resolves "Authorization: Basic" credentials against the user
// store.
type BasicAuth struct {
	pathRules
	resolve *resolver
	logf    func(string, ...any)
}

func NewBasic(cfg Config) (*BasicAuth, error) {
	applyDefaults(&cfg)
	if cfg.Users == nil {
		return nil, fmt.Errorf("%w: basic auth needs a user store", ErrInvalidArgument)
	}
	hasher, err := hasherFor(cfg)
	if err != nil {
		return nil, err
	}
	logf := logfOrDiscard(cfg.Logf)
	return &BasicAuth{resolve: newResolver(cfg.Users, hasher, logf), logf: logf}, nil
}

func (*BasicAuth) Kind() Kind { return KindBasic }

// ExtractCredential returns any Authorization header. Headers that do not
// use the Basic scheme are tagged SchemeNone and never resolve.
func (*BasicAuth) ExtractCredential(r *http.Request) (Credential, bool) {
	h, ok := authorizationHeader(r)
	if !ok {
		return Credential{}, false
	}
	if strings.HasPrefix(h, basicPrefix) {
		return Credential{Scheme: SchemeBasic, Raw: h}, true
	}
	return Credential{Scheme: SchemeNone, Raw: h}, true
}

func (b *BasicAuth) ResolvePrincipal(ctx context.Context, c Credential) (Principal, bool) {
	if c.Scheme != SchemeBasic {
		return Principal{}, false
	}
	dc, err := DecodeBasic(c.Raw)
	if err != nil {
		b.logf("basic auth: %v", err)
		return Principal{}, false
	}
	return b.resolve.checkPassword(ctx, dc.Identifier, dc.Secret)
}

func hasherFor(cfg Config) (PasswordHasher, error) {
	if cfg.Hasher != nil {
		return cfg.Hasher, nil
	}
	h, err := NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return h, nil
}
