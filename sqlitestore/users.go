package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/google/uuid"
)

// Register creates a user with a hashed password. Identifiers are
// compared case-sensitively.
func (u *Users) Register(ctx context.Context, identifier, password string) (auth.Principal, error) {
	if identifier == "" || password == "" {
		return auth.Principal{}, fmt.Errorf("%w: identifier and password are required", auth.ErrInvalidArgument)
	}
	if err := u.validatePassword(password); err != nil {
		return auth.Principal{}, err
	}

	// Hash before opening the transaction; bcrypt is slow on purpose.
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return auth.Principal{}, err
	}
	subjectID := uuid.NewString()
	now := u.now().Unix()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("begin: %w", err)
	}
	defer rollbackIfNeeded(tx)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE identifier = ?`, identifier).Scan(&exists); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return auth.Principal{}, fmt.Errorf("check identifier: %w", err)
	}
	if exists == 1 {
		return auth.Principal{}, ErrAlreadyRegistered
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (subject_id, identifier, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, subjectID, identifier, hash, now); err != nil {
		return auth.Principal{}, fmt.Errorf("insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return auth.Principal{}, fmt.Errorf("commit: %w", err)
	}

	return auth.Principal{
		SubjectID:    subjectID,
		Identifier:   identifier,
		PasswordHash: hash,
		CreatedAt:    time.Unix(now, 0),
	}, nil
}

func (u *Users) FindByIdentifier(ctx context.Context, identifier string) (auth.Principal, bool, error) {
	return u.findOne(ctx, `WHERE identifier = ?`, identifier)
}

func (u *Users) FindBySubjectID(ctx context.Context, subjectID string) (auth.Principal, bool, error) {
	return u.findOne(ctx, `WHERE subject_id = ?`, subjectID)
}

// UpdatePassword replaces the stored hash for subjectID. It does not touch
// sessions; auth.ChangePassword pairs it with revocation.
func (u *Users) UpdatePassword(ctx context.Context, subjectID, password string) error {
	if err := u.validatePassword(password); err != nil {
		return err
	}
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}
	res, err := u.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE subject_id = ?`, hash, subjectID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (u *Users) findOne(ctx context.Context, where string, arg string) (auth.Principal, bool, error) {
	if arg == "" {
		return auth.Principal{}, false, nil
	}
	var (
		p         auth.Principal
		createdAt int64
	)
	err := u.db.QueryRowContext(ctx, `
		SELECT subject_id, identifier, password_hash, created_at
		FROM users
	`+where, arg).Scan(&p.SubjectID, &p.Identifier, &p.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Principal{}, false, nil
		}
		return auth.Principal{}, false, fmt.Errorf("query user: %w", err)
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	return p, true, nil
}

// rollbackIfNeeded rolls back tx if it's still active.
func rollbackIfNeeded(tx *sql.Tx) {
	_ = tx.Rollback()
}
