package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thejerf/abtime"
)

// SessionRecord is what a SessionStore keeps per token.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	SubjectID string    `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore maps session tokens to records. Stores do not enforce
// expiry; that belongs to the authenticator holding the policy.
type SessionStore interface {
	Create(ctx context.Context, subjectID string) (string, error)
	Lookup(ctx context.Context, sessionID string) (SessionRecord, bool, error)
	Destroy(ctx context.Context, sessionID string) (bool, error)

	// DeleteWhere removes every record for which match returns true and
	// reports how many were removed.
	DeleteWhere(ctx context.Context, match func(SessionRecord) bool) (int, error)
}

// NewToken returns a random 128-bit token rendered as a UUID string.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return id.String(), nil
}

// MemoryStore is a SessionStore held in process memory. It is safe for
// concurrent use; one RWMutex guards the whole map.
type MemoryStore struct {
	clock    abtime.AbstractTime
	newToken func() (string, error)

	mu      sync.RWMutex
	records map[string]SessionRecord
}

// NewMemoryStore returns an empty store. nil arguments select the real
// clock and NewToken.
func NewMemoryStore(clock abtime.AbstractTime, newToken func() (string, error)) *MemoryStore {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if newToken == nil {
		newToken = NewToken
	}
	return &MemoryStore{
		clock:    clock,
		newToken: newToken,
		records:  map[string]SessionRecord{},
	}
}

func (s *MemoryStore) Create(_ context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject id", ErrInvalidArgument)
	}
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	rec := SessionRecord{SessionID: token, SubjectID: subjectID, CreatedAt: s.clock.Now()}

	s.mu.Lock()
	s.records[token] = rec
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Lookup(_ context.Context, sessionID string) (SessionRecord, bool, error) {
	if sessionID == "" {
		return SessionRecord{}, false, nil
	}
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *MemoryStore) Destroy(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[sessionID]; !ok {
		return false, nil
	}
	delete(s.records, sessionID)
	return true, nil
}

func (s *MemoryStore) DeleteWhere(_ context.Context, match func(SessionRecord) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.records {
		if match(rec) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of live records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
