package auth

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest plaintext bcrypt accepts. Hash rejects
// longer input with ErrPasswordTooLong rather than truncating it.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by BcryptHasher.Hash for plaintexts over
// MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher hashes and verifies passwords. Hash must salt every call.
// Verify(p, Hash(p)) holds for every p that Hash accepts; BcryptHasher
// accepts up to MaxPasswordBytes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher is the default PasswordHasher.
type BcryptHasher struct {
	cost atomic.Int32
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is zero.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h := &BcryptHasher{}
	if err := h.SetCost(cost); err != nil {
		return nil, err
	}
	return h, nil
}

// SetCost changes the work factor for subsequent Hash calls. Existing
// hashes keep verifying since bcrypt embeds the cost.
func (h *BcryptHasher) SetCost(cost int) error {
	if err := validateBcryptCost(cost); err != nil {
		return err
	}
	h.cost.Store(int32(cost))
	return nil
}

func (h *BcryptHasher) Cost() int { return int(h.cost.Load()) }

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, ErrPasswordTooLong)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes and
// plaintexts over MaxPasswordBytes never match.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" || len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
