// Package auth decides, per HTTP request, whether authentication is needed
// and resolves the request to a Principal. It provides:
//   - four Authenticator variants: Null, Basic (Authorization header),
//     Session and ExpiringSession (server-side session tokens in a cookie)
//   - a Basic header codec, a bcrypt PasswordHasher and an in-memory
//     SessionStore with an injectable clock and token generator
//   - net/http middleware mapping the outcome to 401/403 responses
//
// User storage is not part of this package. Callers provide a UserStore;
// see package sqlitestore for a SQLite implementation.
//
// Quick start:
//
//	users, _ := sqlitestore.Open("app.db", hasher)
//	a, err := auth.New(auth.Config{
//	  Type:          auth.KindExpiringSession,
//	  Users:         users,
//	  SessionPolicy: auth.PolicyFromSeconds(3600),
//	})
//	if err != nil {
//	  log.Fatal(err)
//	}
//	guard := auth.NewGuard(a, []string{"/api/v1/status/", "/api/v1/public*"})
//	mux.Handle("/api/", guard.Middleware(apiHandler))
//
// Every resolution failure (bad header, unknown identifier, wrong secret,
// missing or expired session, user store error) yields the same
// "no principal" outcome so callers cannot tell which step failed.
//
// API overview:
//   - type Config, Kind, Credential, Principal, SessionRecord
//   - type Authenticator, SessionManager, UserStore, SessionStore
//   - func New(Config) (Authenticator, error)
//   - func NewNull, NewBasic, NewSession, NewExpiringSession
//   - func Authenticate(Authenticator, *http.Request) (Principal, bool)
//   - func Sessions(Authenticator) SessionManager
//   - func RequireAuth(path, excluded) bool
//   - func DecodeBasic(header) (DecodedCredential, error)
//   - func NewGuard(Authenticator, excluded, ...GuardOption) *Guard
//   - func FromContext(ctx) (Principal, bool)
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/abtime"
)

// Kind names an Authenticator variant. The values match the AUTH_TYPE
// settings understood by the daemon.
type Kind string

const (
	KindNull            Kind = "auth"
	KindBasic           Kind = "basic_auth"
	KindSession         Kind = "session_auth"
	KindExpiringSession Kind = "session_exp_auth"
)

// ParseKind validates an AUTH_TYPE value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindNull, KindBasic, KindSession, KindExpiringSession:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown auth type %q", ErrInvalidArgument, s)
}

// Config controls which Authenticator New builds and how it behaves.
// Zero values get defaults in New.
type Config struct {
	// Type selects the variant.
	Type Kind

	// Users resolves identifiers and subject ids. Required for every
	// variant except Null.
	Users UserStore

	// Store holds session records. Default: a MemoryStore using Clock and
	// NewToken.
	Store SessionStore

	// Hasher verifies passwords. Default: bcrypt at BcryptCost.
	Hasher PasswordHasher

	// BcryptCost is used by the default Hasher (4..31). Default:
	// bcrypt.DefaultCost.
	BcryptCost int

	// SessionName is the cookie carrying the session token. Default:
	// "_my_session_id".
	SessionName string

	// SessionPolicy is only consulted by the ExpiringSession variant.
	SessionPolicy SessionPolicy

	// PruneInterval starts a background sweep of expired sessions when > 0
	// (ExpiringSession only). Default: disabled.
	PruneInterval time.Duration

	// Cookie attributes used by SetCookie and ClearCookie.
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieHTTPOnly *bool
	CookieSameSite http.SameSite

	// Clock is the time source. Default: abtime.NewRealTime().
	Clock abtime.AbstractTime

	// NewToken generates session tokens. Default: NewToken.
	NewToken func() (string, error)

	// Logf is an optional printf-style logger. nil disables logging.
	Logf func(format string, args ...any)
}

// Principal is the identity a request resolves to.
type Principal struct {
	SubjectID    string
	Identifier   string
	PasswordHash string
	CreatedAt    time.Time
}

// Scheme tags how a credential was presented.
type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeBasic
	SchemeSession
)

// Credential is the raw, unverified material extracted from a request.
type Credential struct {
	Scheme Scheme
	Raw    string
}

// Authenticator is implemented by every variant.
type Authenticator interface {
	Kind() Kind

	// RequireAuth reports whether path needs authentication given the
	// excluded path patterns.
	RequireAuth(path string, excluded []string) bool

	// ExtractCredential returns the credential carried by r, if any.
	ExtractCredential(r *http.Request) (Credential, bool)

	// ResolvePrincipal verifies c. It never reports why it failed.
	ResolvePrincipal(ctx context.Context, c Credential) (Principal, bool)
}

// SessionManager is implemented by the Session and ExpiringSession
// variants.
type SessionManager interface {
	CreateSession(ctx context.Context, subjectID string) (string, error)
	DestroySession(ctx context.Context, sessionID string) (bool, error)

	// Login verifies identifier/secret and issues a session on success.
	Login(ctx context.Context, identifier, secret string) (Principal, string, bool, error)

	// DestroyRequestSession destroys the session named by r's cookie.
	DestroyRequestSession(r *http.Request) (bool, error)

	// RevokeSubject destroys every session of subjectID.
	RevokeSubject(ctx context.Context, subjectID string) (int, error)

	SetCookie(w http.ResponseWriter, sessionID string)
	ClearCookie(w http.ResponseWriter)
}

// New builds the variant selected by cfg.Type.
func New(cfg Config) (Authenticator, error) {
	var (
		a   Authenticator
		err error
	)
	switch cfg.Type {
	case KindNull:
		return NewNull(cfg), nil
	case KindBasic:
		a, err = NewBasic(cfg)
	case KindSession:
		a, err = NewSession(cfg)
	case KindExpiringSession:
		a, err = NewExpiringSession(cfg)
	default:
		_, err = ParseKind(string(cfg.Type))
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate extracts and resolves r's credential.
func Authenticate(a Authenticator, r *http.Request) (Principal, bool) {
	c, ok := a.ExtractCredential(r)
	if !ok {
		return Principal{}, false
	}
	return a.ResolvePrincipal(r.Context(), c)
}

// Sessions returns a's SessionManager. It panics if a does not issue
// sessions, which is a wiring error rather than a runtime condition.
func Sessions(a Authenticator) SessionManager {
	sm, ok := a.(SessionManager)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrSessionsUnsupported, a.Kind()))
	}
	return sm
}
