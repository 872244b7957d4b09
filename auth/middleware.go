package auth

import (
	"net/http"
)

// Guard applies an Authenticator to HTTP requests.
type Guard struct {
	auth     Authenticator
	excluded []string
	strict   bool
	logf     func(string, ...any)
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// StrictUnauthorized answers 401 for every failure, including a present
// but unresolvable credential, which otherwise gets 403.
func StrictUnauthorized() GuardOption {
	return func(g *Guard) { g.strict = true }
}

// WithGuardLogf sets a printf-style logger for rejected requests.
func WithGuardLogf(f func(format string, args ...any)) GuardOption {
	return func(g *Guard) { g.logf = logfOrDiscard(f) }
}

// NewGuard returns a Guard for a. excluded is copied.
func NewGuard(a Authenticator, excluded []string, opts ...GuardOption) *Guard {
	g := &Guard{
		auth:     a,
		excluded: append([]string(nil), excluded...),
		logf:     discardf,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Authenticator returns the guarded authenticator.
func (g *Guard) Authenticator() Authenticator { return g.auth }

// Check applies the guard to r. It returns the HTTP status to answer with
// (0 to continue) and the resolved principal, if any.
func (g *Guard) Check(r *http.Request) (int, Principal, bool) {
	if !g.auth.RequireAuth(r.URL.Path, g.excluded) {
		return 0, Principal{}, false
	}
	c, ok := g.auth.ExtractCredential(r)
	if !ok {
		return http.StatusUnauthorized, Principal{}, false
	}
	p, ok := g.auth.ResolvePrincipal(r.Context(), c)
	if !ok {
		if g.strict {
			return http.StatusUnauthorized, Principal{}, false
		}
		return http.StatusForbidden, Principal{}, false
	}
	return 0, p, true
}

// Middleware rejects requests that need authentication and fail it, and
// injects the principal into the context of those that pass.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, p, ok := g.Check(r)
		if status != 0 {
			g.logf("%s %s: %d", r.Method, r.URL.Path, status)
			http.Error(w, http.StatusText(status), status)
			return
		}
		if ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// Optional resolves the principal when possible and never rejects.
func (g *Guard) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := Authenticate(g.auth, r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrincipal ensures a principal is present in context (e.g., after
// Optional). If not, it returns 401 and stops the chain.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
