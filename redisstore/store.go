// Package redisstore is an auth.SessionStore backed by Redis, for
// deployments where several processes share sessions.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/redis/go-redis/v9"
	"github.com/thejerf/abtime"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "session:"

// Options configures a Store. Zero values get defaults.
type Options struct {
	// Prefix is prepended to every key. Default: "session:".
	Prefix string

	// Retention lets Redis drop a key this long after creation. It is
	// housekeeping only; expiry is decided by the authenticator. Zero keeps
	// keys until destroyed.
	Retention time.Duration

	Clock    abtime.AbstractTime
	NewToken func() (string, error)
}

// Client is the part of redis.UniversalClient the store uses.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

var _ Client = (redis.UniversalClient)(nil)

// Store implements auth.SessionStore.
type Store struct {
	client    Client
	prefix    string
	retention time.Duration
	clock     abtime.AbstractTime
	newToken  func() (string, error)
}

var _ auth.SessionStore = (*Store)(nil)

// New creates a Redis-backed session store.
func New(client Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Clock == nil {
		opts.Clock = abtime.NewRealTime()
	}
	if opts.NewToken == nil {
		opts.NewToken = auth.NewToken
	}
	return &Store{
		client:    client,
		prefix:    opts.Prefix,
		retention: opts.Retention,
		clock:     opts.Clock,
		newToken:  opts.NewToken,
	}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) Create(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject id", auth.ErrInvalidArgument)
	}
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(auth.SessionRecord{
		SessionID: token,
		SubjectID: subjectID,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), data, s.retention).Err(); err != nil {
		return "", fmt.Errorf("session: set: %w", err)
	}
	return token, nil
}

func (s *Store) Lookup(ctx context.Context, sessionID string) (auth.SessionRecord, bool, error) {
	if sessionID == "" {
		return auth.SessionRecord{}, false, nil
	}
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.SessionRecord{}, false, nil
	}
	if err != nil {
		return auth.SessionRecord{}, false, fmt.Errorf("session: get: %w", err)
	}
	var rec auth.SessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return auth.SessionRecord{}, false, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return rec, true, nil
}

func (s *Store) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("session: del: %w", err)
	}
	return n > 0, nil
}

// DeleteWhere scans every key under the prefix. It is O(sessions) and
// meant for periodic pruning and revocation, not the request path.
func (s *Store) DeleteWhere(ctx context.Context, match func(auth.SessionRecord) bool) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("session: scan: %w", err)
		}
		for _, k := range keys {
			val, err := s.client.Get(ctx, k).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return removed, fmt.Errorf("session: get: %w", err)
			}
			var rec auth.SessionRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				continue
			}
			if !match(rec) {
				continue
			}
			n, err := s.client.Del(ctx, k).Result()
			if err != nil {
				return removed, fmt.Errorf("session: del: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
