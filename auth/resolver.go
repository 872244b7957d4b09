package auth

import (
	"context"
	"sync"
)

// UserStore is the user-storage collaborator. Implementations return
// ok=false for unknown users; any error is treated the same way.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (Principal, bool, error)
	FindBySubjectID(ctx context.Context, subjectID string) (Principal, bool, error)
}

// resolver turns identifiers and subject ids into principals, collapsing
// every failure into ok=false.
type resolver struct {
	users  UserStore
	hasher PasswordHasher
	logf   func(format string, args ...any)

	decoyOnce sync.Once
	decoy     string
}

func newResolver(users UserStore, hasher PasswordHasher, logf func(string, ...any)) *resolver {
	return &resolver{users: users, hasher: hasher, logf: logf}
}

func (r *resolver) bySubjectID(ctx context.Context, subjectID string) (Principal, bool) {
	if subjectID == "" {
		return Principal{}, false
	}
	p, ok, err := r.users.FindBySubjectID(ctx, subjectID)
	if err != nil {
		r.logf("find subject: %v", err)
		return Principal{}, false
	}
	return p, ok
}

// checkPassword looks up identifier and verifies secret against its stored
// hash. Unknown identifiers still pay for one hash comparison.
func (r *resolver) checkPassword(ctx context.Context, identifier, secret string) (Principal, bool) {
	if identifier == "" {
		return Principal{}, false
	}
	p, ok, err := r.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		r.logf("find identifier: %v", err)
		ok = false
	}
	if !ok {
		r.hasher.Verify(secret, r.decoyHash())
		return Principal{}, false
	}
	if !r.hasher.Verify(secret, p.PasswordHash) {
		return Principal{}, false
	}
	return p, true
}

func (r *resolver) decoyHash() string {
	r.decoyOnce.Do(func() {
		h, err := r.hasher.Hash("decoy-password")
		if err != nil {
			r.logf("decoy hash: %v", err)
			return
		}
		r.decoy = h
	})
	return r.decoy
}
