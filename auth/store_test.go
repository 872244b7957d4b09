package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	clock := abtime.NewManualAtTime(testBase)
	s := NewMemoryStore(clock, nil)
	ctx := context.Background()

	token, err := s.Create(ctx, "u1")
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	require.NoError(t, err, "default tokens are UUIDs")

	rec, ok, err := s.Lookup(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SessionRecord{SessionID: token, SubjectID: "u1", CreatedAt: testBase}, rec)

	destroyed, err := s.Destroy(ctx, token)
	require.NoError(t, err)
	assert.True(t, destroyed)

	destroyed, err = s.Destroy(ctx, token)
	require.NoError(t, err)
	assert.False(t, destroyed)

	_, ok, err = s.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDoesNotEnforceExpiry(t *testing.T) {
	clock := abtime.NewManualAtTime(testBase)
	s := NewMemoryStore(clock, nil)
	token, err := s.Create(context.Background(), "u1")
	require.NoError(t, err)

	clock.Advance(1000 * time.Hour)

	_, ok, err := s.Lookup(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreRejectsEmptySubject(t *testing.T) {
	s := NewMemoryStore(nil, nil)
	_, err := s.Create(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreTokenGeneratorFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	s := NewMemoryStore(nil, func() (string, error) { return "", boom })
	_, err := s.Create(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestMemoryStoreInjectedTokens(t *testing.T) {
	n := 0
	s := NewMemoryStore(nil, func() (string, error) {
		n++
		return "tok-" + strconv.Itoa(n), nil
	})
	a, err := s.Create(context.Background(), "u1")
	require.NoError(t, err)
	b, err := s.Create(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", a)
	assert.Equal(t, "tok-2", b)
}

func TestMemoryStoreDeleteWhere(t *testing.T) {
	s := NewMemoryStore(nil, nil)
	ctx := context.Background()
	for _, subject := range []string{"a", "a", "b"} {
		_, err := s.Create(ctx, subject)
		require.NoError(t, err)
	}

	n, err := s.DeleteWhere(ctx, func(rec SessionRecord) bool { return rec.SubjectID == "a" })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(nil, nil)
	ctx := context.Background()

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	tokens := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tok, err := s.Create(ctx, "subject-"+strconv.Itoa(w))
				if err != nil {
					t.Error(err)
					return
				}
				if _, ok, _ := s.Lookup(ctx, tok); !ok {
					t.Errorf("token %s not found right after create", tok)
				}
				tokens <- tok
			}
		}(w)
	}
	wg.Wait()
	close(tokens)

	seen := map[string]bool{}
	for tok := range tokens {
		assert.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
	assert.Equal(t, workers*perWorker, s.Len())
}
