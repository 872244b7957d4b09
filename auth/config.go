package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionName is the cookie carrying the session token.
const DefaultSessionName = "_my_session_id"

// SessionPolicy controls session expiry. A zero TTL never expires.
type SessionPolicy struct {
	TTL time.Duration
}

// Expires reports whether the policy expires sessions at all.
func (p SessionPolicy) Expires() bool { return p.TTL > 0 }

// PolicyFromSeconds builds a policy from whole seconds; negative values are
// treated as zero.
func PolicyFromSeconds(seconds int) SessionPolicy {
	if seconds <= 0 {
		return SessionPolicy{}
	}
	return SessionPolicy{TTL: time.Duration(seconds) * time.Second}
}

// ParseSessionPolicy parses a SESSION_DURATION style value in seconds.
// On malformed input it returns the non-expiring policy together with a
// *ConfigurationError describing the problem.
func ParseSessionPolicy(raw string) (SessionPolicy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SessionPolicy{}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return SessionPolicy{}, &ConfigurationError{Key: "SESSION_DURATION", Value: raw, Err: err}
	}
	if n < 0 {
		return SessionPolicy{}, &ConfigurationError{Key: "SESSION_DURATION", Value: raw, Err: errors.New("must not be negative")}
	}
	return PolicyFromSeconds(n), nil
}

func applyDefaults(cfg *Config) {
	if cfg.SessionName == "" {
		cfg.SessionName = DefaultSessionName
	}
	if cfg.SessionPolicy.TTL < 0 {
		cfg.SessionPolicy = SessionPolicy{}
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	if cfg.CookieHTTPOnly == nil {
		t := true
		cfg.CookieHTTPOnly = &t
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Clock == nil {
		cfg.Clock = abtime.NewRealTime()
	}
	if cfg.NewToken == nil {
		cfg.NewToken = NewToken
	}
	// PruneInterval stays zero unless set; the pruner is opt-in.
}

func validateBcryptCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be in [%d,%d]; got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return nil
}
