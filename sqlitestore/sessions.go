package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/thejerf/abtime"
)

// Sessions is an auth.SessionStore kept in the same database as Users, so
// sessions survive a restart. Like every SessionStore it does not enforce
// expiry.
type Sessions struct {
	db       dbHandle
	clock    abtime.AbstractTime
	newToken func() (string, error)
}

var _ auth.SessionStore = (*Sessions)(nil)

// Sessions returns a session store sharing u's database. nil arguments
// select the real clock and auth.NewToken. Closing u closes it too.
func (u *Users) Sessions(clock abtime.AbstractTime, newToken func() (string, error)) *Sessions {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if newToken == nil {
		newToken = auth.NewToken
	}
	return &Sessions{db: u.db, clock: clock, newToken: newToken}
}

func (s *Sessions) Create(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject id", auth.ErrInvalidArgument)
	}
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, subject_id, created_at)
		VALUES (?, ?, ?)
	`, token, subjectID, s.clock.Now().UnixNano()); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func (s *Sessions) Lookup(ctx context.Context, sessionID string) (auth.SessionRecord, bool, error) {
	if sessionID == "" {
		return auth.SessionRecord{}, false, nil
	}
	rec := auth.SessionRecord{SessionID: sessionID}
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT subject_id, created_at FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&rec.SubjectID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.SessionRecord{}, false, nil
		}
		return auth.SessionRecord{}, false, fmt.Errorf("query session: %w", err)
	}
	rec.CreatedAt = time.Unix(0, createdAt)
	return rec, true, nil
}

func (s *Sessions) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteWhere loads every record, then deletes the matching ones in one
// transaction.
func (s *Sessions) DeleteWhere(ctx context.Context, match func(auth.SessionRecord) bool) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, subject_id, created_at FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("query sessions: %w", err)
	}
	var doomed []string
	for rows.Next() {
		var (
			rec       auth.SessionRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.SessionID, &rec.SubjectID, &createdAt); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan session: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		if match(rec) {
			doomed = append(doomed, rec.SessionID)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("iterate sessions: %w", err)
	}
	_ = rows.Close()
	if len(doomed) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer rollbackIfNeeded(tx)
	removed := 0
	for _, id := range doomed {
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return removed, nil
}
