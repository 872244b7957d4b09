package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Brandon689/reqauth/auth"
	"github.com/Brandon689/reqauth/sqlitestore"
)

// Config holds the daemon configuration
type Config struct {
	// AuthType selects the authenticator (AUTH_TYPE). Empty disables
	// authentication entirely.
	AuthType string

	// Session cookie name
	SessionName string

	// Session lifetime; zero never expires
	SessionPolicy auth.SessionPolicy

	// Listen address parts
	Host string
	Port string

	// SQLite user database path
	DBPath string

	// Optional shared session store; empty keeps sessions in memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BcryptCost int

	// Password policy applied by the user store
	MinPasswordLength      int
	RequireStrongPasswords bool

	// Log field names masked before logging
	PIIFields []string

	// Paths that bypass authentication
	ExcludedPaths []string

	// Answer 401 for every failure instead of 401/403
	StrictUnauthorized bool

	Debug bool
}

// DefaultExcludedPaths are the routes reachable without credentials.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
}

// Load reads configuration from environment variables with fallback
// defaults. A malformed SESSION_DURATION is not fatal: the policy falls
// back to never expiring and the problem is returned in warnings.
func Load() (*Config, []error, error) {
	var warnings []error

	policy, err := auth.ParseSessionPolicy(os.Getenv("SESSION_DURATION"))
	if err != nil {
		warnings = append(warnings, err)
	}

	cfg := &Config{
		AuthType:               os.Getenv("AUTH_TYPE"),
		SessionName:            getEnv("SESSION_NAME", auth.DefaultSessionName),
		SessionPolicy:          policy,
		Host:                   getEnv("API_HOST", "0.0.0.0"),
		Port:                   getEnv("API_PORT", "5000"),
		DBPath:                 getEnv("DB_PATH", "auth.db"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		BcryptCost:             getEnvInt("BCRYPT_COST", 0),
		MinPasswordLength:      getEnvInt("MIN_PASSWORD_LENGTH", sqlitestore.DefaultMinPasswordLength),
		RequireStrongPasswords: getEnvBool("REQUIRE_STRONG_PASSWORDS", false),
		PIIFields:              getEnvList("PII_FIELDS", []string{"email", "password", "identifier"}),
		ExcludedPaths:          getEnvList("EXCLUDED_PATHS", DefaultExcludedPaths),
		StrictUnauthorized:     getEnvBool("STRICT_UNAUTHORIZED", false),
		Debug:                  getEnvBool("DEBUG", false),
	}

	if cfg.AuthType != "" {
		if _, err := auth.ParseKind(cfg.AuthType); err != nil {
			return nil, warnings, fmt.Errorf("AUTH_TYPE: %w", err)
		}
	}
	if cfg.Port == "" {
		return nil, warnings, fmt.Errorf("API_PORT is required")
	}

	return cfg, warnings, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
