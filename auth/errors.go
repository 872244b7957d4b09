package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an unknown identifier, subject or session.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports a missing or empty required input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSessionsUnsupported is the panic value of Sessions when the
	// authenticator does not issue session tokens.
	ErrSessionsUnsupported = errors.New("authenticator does not manage sessions")

	ErrSchemeMismatch    = errors.New("authorization scheme mismatch")
	ErrMalformedEncoding = errors.New("malformed base64 credential")
	ErrMissingSeparator  = errors.New("credential has no ':' separator")
)

// DecodeErrorKind classifies why a Basic header could not be decoded.
type DecodeErrorKind int

const (
	SchemeMismatch DecodeErrorKind = iota + 1
	MalformedEncoding
	MissingSeparator
)

func (k DecodeErrorKind) String() string {
	switch k {
	case SchemeMismatch:
		return "scheme mismatch"
	case MalformedEncoding:
		return "malformed encoding"
	case MissingSeparator:
		return "missing separator"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
	}
}

// DecodeError is returned by DecodeBasic. It matches the Err* sentinel of
// its kind under errors.Is.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "decode credential: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "decode credential: " + e.Kind.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	switch e.Kind {
	case SchemeMismatch:
		return target == ErrSchemeMismatch
	case MalformedEncoding:
		return target == ErrMalformedEncoding
	case MissingSeparator:
		return target == ErrMissingSeparator
	}
	return false
}

// ConfigurationError describes a configuration value that could not be
// used. Callers are expected to log it and continue with the fallback.
type ConfigurationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
