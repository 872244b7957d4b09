package sqlitestore

import (
	"errors"
	"fmt"

	"github.com/Brandon689/reqauth/auth"
)

// DefaultMinPasswordLength applies unless WithMinPasswordLength overrides it.
const DefaultMinPasswordLength = 8

// ErrWeakPassword is returned by Register and UpdatePassword for passwords
// that fail the configured policy. It always wraps auth.ErrInvalidArgument.
var ErrWeakPassword = errors.New("password does not meet policy")

// WithMinPasswordLength sets the minimum password length in bytes. Values
// below 1 are raised to 1.
func WithMinPasswordLength(n int) Option {
	return func(u *Users) {
		if n < 1 {
			n = 1
		}
		u.minPasswordLen = n
	}
}

// WithStrongPasswords additionally requires at least one letter and one
// digit.
func WithStrongPasswords(on bool) Option {
	return func(u *Users) { u.requireStrong = on }
}

// validatePassword enforces minimal length and optional strength requirements.
func (u *Users) validatePassword(pw string) error {
	if pw == "" {
		return fmt.Errorf("%w: empty password", auth.ErrInvalidArgument)
	}
	if len(pw) < u.minPasswordLen {
		return fmt.Errorf("%w: %w: too short (min %d)", auth.ErrInvalidArgument, ErrWeakPassword, u.minPasswordLen)
	}
	if len(pw) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: %w", auth.ErrInvalidArgument, auth.ErrPasswordTooLong)
	}
	if u.requireStrong && !hasLetterAndDigit(pw) {
		return fmt.Errorf("%w: %w: needs at least one letter and one digit", auth.ErrInvalidArgument, ErrWeakPassword)
	}
	return nil
}

func hasLetterAndDigit(s string) bool {
	var hasL, hasD bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasD = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasL = true
		}
		if hasL && hasD {
			return true
		}
	}
	return false
}
