package sqlitestore

import "fmt"

func (u *Users) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id TEXT NOT NULL UNIQUE,
			identifier TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_subject_id ON sessions(subject_id);`,
	}
	for _, s := range stmts {
		if _, err := u.db.Exec(s); err != nil {
			return fmt.Errorf("migrate step: %w", err)
		}
	}
	return nil
}
