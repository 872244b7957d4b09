package redisstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeClient keeps keys in memory. SCAN pages over a snapshot taken at
// cursor 0, so the store's cursor loop runs.
type fakeClient struct {
	mu       sync.Mutex
	data     map[string][]byte
	expiries map[string]time.Duration
	pageSize int
	snapshot []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string][]byte{}, expiries: map[string]time.Duration{}, pageSize: 2}
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	}
	f.expiries[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			delete(f.expiries, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Scan(_ context.Context, cursor uint64, match string, _ int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor == 0 {
		prefix := strings.TrimSuffix(match, "*")
		f.snapshot = f.snapshot[:0]
		for k := range f.data {
			if strings.HasPrefix(k, prefix) {
				f.snapshot = append(f.snapshot, k)
			}
		}
		sort.Strings(f.snapshot)
	}
	keys := f.snapshot

	start := int(cursor)
	if start > len(keys) {
		start = len(keys)
	}
	end := start + f.pageSize
	var next uint64
	if end < len(keys) {
		next = uint64(end)
	} else {
		end = len(keys)
	}
	return redis.NewScanCmdResult(append([]string(nil), keys[start:end]...), next, nil)
}

func (f *fakeClient) expiry(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiries[key]
}
