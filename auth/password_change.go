package auth

import (
	"context"
	"fmt"
)

// PasswordUpdater is a user store that can replace a stored password.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, subjectID, password string) error
}

// SubjectRevoker destroys every session of a subject. SessionManager
// implements it.
type SubjectRevoker interface {
	RevokeSubject(ctx context.Context, subjectID string) (int, error)
}

// ChangePassword replaces subjectID's password and then revokes all of its
// sessions, reporting how many were destroyed. A nil sessions skips
// revocation, for header-only authenticators. If revocation fails the new
// password is already stored; the error says so.
func ChangePassword(ctx context.Context, users PasswordUpdater, sessions SubjectRevoker, subjectID, newPassword string) (int, error) {
	if subjectID == "" {
		return 0, fmt.Errorf("%w: empty subject id", ErrInvalidArgument)
	}
	if err := users.UpdatePassword(ctx, subjectID, newPassword); err != nil {
		return 0, fmt.Errorf("change password: %w", err)
	}
	if sessions == nil {
		return 0, nil
	}
	n, err := sessions.RevokeSubject(ctx, subjectID)
	if err != nil {
		return n, fmt.Errorf("password changed, revoking sessions: %w", err)
	}
	return n, nil
}
