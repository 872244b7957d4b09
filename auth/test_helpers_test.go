package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
)

var testBase = time.Unix(1_700_000_000, 0)

// memUsers is an in-memory UserStore for tests.
type memUsers struct {
	hasher PasswordHasher

	mu        sync.Mutex
	byID      map[string]Principal
	bySubject map[string]Principal
	next      int
	err       error
}

func newMemUsers(h PasswordHasher) *memUsers {
	return &memUsers{hasher: h, byID: map[string]Principal{}, bySubject: map[string]Principal{}}
}

func (m *memUsers) register(t *testing.T, identifier, password string) Principal {
	t.Helper()
	hash, err := m.hasher.Hash(password)
	require.NoError(t, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p := Principal{
		SubjectID:    "subject-" + strconv.Itoa(m.next),
		Identifier:   identifier,
		PasswordHash: hash,
		CreatedAt:    testBase,
	}
	m.byID[identifier] = p
	m.bySubject[p.SubjectID] = p
	return p
}

func (m *memUsers) failWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *memUsers) FindByIdentifier(ctx context.Context, identifier string) (Principal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Principal{}, false, m.err
	}
	if err := ctx.Err(); err != nil {
		return Principal{}, false, err
	}
	p, ok := m.byID[identifier]
	return p, ok, nil
}

func (m *memUsers) FindBySubjectID(ctx context.Context, subjectID string) (Principal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Principal{}, false, m.err
	}
	if err := ctx.Err(); err != nil {
		return Principal{}, false, err
	}
	p, ok := m.bySubject[subjectID]
	return p, ok, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, subjectID, password string) error {
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p, ok := m.bySubject[subjectID]
	if !ok {
		return ErrNotFound
	}
	p.PasswordHash = hash
	m.bySubject[subjectID] = p
	m.byID[p.Identifier] = p
	return nil
}

var errStoreDown = errors.New("user store unavailable")

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(4) // Fast for tests
	require.NoError(t, err)
	return h
}

type testEnv struct {
	cfg   Config
	users *memUsers
	clock *abtime.ManualTime
}

func newTestEnv(t *testing.T, kind Kind, mutate ...func(*Config)) *testEnv {
	t.Helper()
	h := newTestHasher(t)
	clock := abtime.NewManualAtTime(testBase)
	users := newMemUsers(h)
	cfg := Config{
		Type:   kind,
		Users:  users,
		Hasher: h,
		Clock:  clock,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return &testEnv{cfg: cfg, users: users, clock: clock}
}

func (e *testEnv) build(t *testing.T) Authenticator {
	t.Helper()
	a, err := New(e.cfg)
	require.NoError(t, err)
	if c, ok := a.(interface{ Close() error }); ok {
		t.Cleanup(func() { _ = c.Close() })
	}
	return a
}

func newReqWithCookie(method, target string, c *http.Cookie) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func newReqWithBasic(target, identifier, secret string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set("Authorization", EncodeBasic(identifier, secret))
	return r
}

func sessionCookie(name, token string) *http.Cookie {
	return &http.Cookie{Name: name, Value: token}
}
