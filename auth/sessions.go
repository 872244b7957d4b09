package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/abtime"
)

// sessionCore is shared by SessionAuth and ExpiringSessionAuth: token
// issuance, cookie transport and principal lookup by subject id.
type sessionCore struct {
	pathRules

	store   SessionStore
	resolve *resolver
	clock   abtime.AbstractTime
	logf    func(string, ...any)

	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite http.SameSite
	cookieTTL      time.Duration
}

func newSessionCore(cfg Config) (*sessionCore, error) {
	applyDefaults(&cfg)
	if cfg.Users == nil {
		return nil, fmt.Errorf("%w: session auth needs a user store", ErrInvalidArgument)
	}
	hasher, err := hasherFor(cfg)
	if err != nil {
		return nil, err
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore(cfg.Clock, cfg.NewToken)
	}
	logf := logfOrDiscard(cfg.Logf)
	return &sessionCore{
		store:          store,
		resolve:        newResolver(cfg.Users, hasher, logf),
		clock:          cfg.Clock,
		logf:           logf,
		cookieName:     cfg.SessionName,
		cookiePath:     cfg.CookiePath,
		cookieDomain:   cfg.CookieDomain,
		cookieSecure:   cfg.CookieSecure,
		cookieHTTPOnly: *cfg.CookieHTTPOnly,
		cookieSameSite: cfg.CookieSameSite,
	}, nil
}

// SessionName is the cookie name sessions travel in.
func (s *sessionCore) SessionName() string { return s.cookieName }

// ExtractCredential reads the session cookie.
func (s *sessionCore) ExtractCredential(r *http.Request) (Credential, bool) {
	token, err := s.readCookie(r)
	if err != nil || token == "" {
		return Credential{}, false
	}
	return Credential{Scheme: SchemeSession, Raw: token}, true
}

func (s *sessionCore) CreateSession(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject id", ErrInvalidArgument)
	}
	token, err := s.store.Create(ctx, subjectID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// DestroySession removes sessionID and reports whether it existed.
func (s *sessionCore) DestroySession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	ok, err := s.store.Destroy(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("destroy session: %w", err)
	}
	return ok, nil
}

func (s *sessionCore) DestroyRequestSession(r *http.Request) (bool, error) {
	token, err := s.readCookie(r)
	if err != nil || token == "" {
		return false, nil
	}
	return s.DestroySession(r.Context(), token)
}

func (s *sessionCore) Login(ctx context.Context, identifier, secret string) (Principal, string, bool, error) {
	p, ok := s.resolve.checkPassword(ctx, identifier, secret)
	if !ok {
		return Principal{}, "", false, nil
	}
	token, err := s.CreateSession(ctx, p.SubjectID)
	if err != nil {
		return Principal{}, "", false, err
	}
	return p, token, true, nil
}

func (s *sessionCore) RevokeSubject(ctx context.Context, subjectID string) (int, error) {
	if subjectID == "" {
		return 0, fmt.Errorf("%w: empty subject id", ErrInvalidArgument)
	}
	n, err := s.store.DeleteWhere(ctx, func(rec SessionRecord) bool {
		return rec.SubjectID == subjectID
	})
	if err != nil {
		return n, fmt.Errorf("revoke sessions: %w", err)
	}
	return n, nil
}

// lookup fetches the record named by c without applying any policy.
func (s *sessionCore) lookup(ctx context.Context, c Credential) (SessionRecord, bool) {
	if c.Scheme != SchemeSession || c.Raw == "" {
		return SessionRecord{}, false
	}
	rec, ok, err := s.store.Lookup(ctx, c.Raw)
	if err != nil {
		s.logf("session lookup: %v", err)
		return SessionRecord{}, false
	}
	return rec, ok
}

func (s *sessionCore) readCookie(r *http.Request) (string, error) {
	if r == nil {
		return "", nil
	}
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	return c.Value, nil
}

// SetCookie issues the session cookie. With an expiring policy the cookie
// carries Expires and Max-Age computed from the injected clock; otherwise
// it is a browser-session cookie.
func (s *sessionCore) SetCookie(w http.ResponseWriter, sessionID string) {
	c := &http.Cookie{
		Name:     s.cookieName,
		Value:    sessionID,
		Path:     s.cookiePath,
		Domain:   s.cookieDomain,
		HttpOnly: s.cookieHTTPOnly,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	}
	if s.cookieTTL > 0 {
		c.Expires = s.clock.Now().Add(s.cookieTTL)
		c.MaxAge = int(s.cookieTTL.Seconds())
		if c.MaxAge <= 0 {
			c.MaxAge = 1
		}
	}
	http.SetCookie(w, c)
}

// ClearCookie uses Max-Age=0 plus an Expires in the past to ensure
// deletion across clients.
func (s *sessionCore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.cookiePath,
		Domain:   s.cookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: s.cookieHTTPOnly,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}
