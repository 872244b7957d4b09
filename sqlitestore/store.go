// Package sqlitestore is a SQLite-backed auth.UserStore.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Brandon689/reqauth/auth"
)

// ErrAlreadyRegistered is returned by Register for a taken identifier.
var ErrAlreadyRegistered = errors.New("identifier already registered")

// dbHandle abstracts *sql.DB for testability and context-aware calls.
type dbHandle interface {
	Close() error
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Users stores principals in SQLite. It is safe to share across handlers.
type Users struct {
	db     dbHandle
	hasher auth.PasswordHasher
	now    func() time.Time

	minPasswordLen int
	requireStrong  bool
}

// Option customizes Users.
type Option func(*Users)

// WithNow overrides the time source used for created_at.
func WithNow(now func() time.Time) Option {
	return func(u *Users) { u.now = now }
}

// Open opens (creating if needed) the database at path and migrates it.
// hasher hashes passwords given to Register and UpdatePassword.
func Open(path string, hasher auth.PasswordHasher, opts ...Option) (*Users, error) {
	if hasher == nil {
		return nil, fmt.Errorf("%w: nil password hasher", auth.ErrInvalidArgument)
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	u := &Users{db: db, hasher: hasher, now: time.Now, minPasswordLen: DefaultMinPasswordLength}
	for _, o := range opts {
		o(u)
	}
	if err := u.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return u, nil
}

// Hasher returns the hasher passwords are stored with.
func (u *Users) Hasher() auth.PasswordHasher { return u.hasher }

// Close releases the database.
func (u *Users) Close() error {
	if u.db == nil {
		return nil
	}
	return u.db.Close()
}
