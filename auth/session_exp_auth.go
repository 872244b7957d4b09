package auth

import (
	"context"
	"sync"
	"time"
)

// pruneTickerID identifies the pruner's ticker to abtime.ManualTime.
const pruneTickerID = 1

// ExpiringSessionAuth is SessionAuth plus a SessionPolicy. A session
// created at t0 is valid while now-t0 <= TTL and invalid once
// now-t0 > TTL; expired records are evicted when seen.
type ExpiringSessionAuth struct {
	*sessionCore
	policy SessionPolicy

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewExpiringSession(cfg Config) (*ExpiringSessionAuth, error) {
	core, err := newSessionCore(cfg)
	if err != nil {
		return nil, err
	}
	policy := cfg.SessionPolicy
	if policy.TTL < 0 {
		policy = SessionPolicy{}
	}
	core.cookieTTL = policy.TTL

	e := &ExpiringSessionAuth{
		sessionCore: core,
		policy:      policy,
		stopCh:      make(chan struct{}),
	}
	if cfg.PruneInterval > 0 && policy.Expires() {
		e.wg.Add(1)
		go e.pruneLoop(cfg.PruneInterval)
	}
	return e, nil
}

func (*ExpiringSessionAuth) Kind() Kind { return KindExpiringSession }

// Policy returns the expiry policy fixed at construction.
func (e *ExpiringSessionAuth) Policy() SessionPolicy { return e.policy }

func (e *ExpiringSessionAuth) ResolvePrincipal(ctx context.Context, c Credential) (Principal, bool) {
	rec, ok := e.lookup(ctx, c)
	if !ok {
		return Principal{}, false
	}
	if e.expired(rec, e.clock.Now()) {
		if _, err := e.store.Destroy(ctx, rec.SessionID); err != nil {
			e.logf("evict expired session: %v", err)
		}
		return Principal{}, false
	}
	return e.resolve.bySubjectID(ctx, rec.SubjectID)
}

func (e *ExpiringSessionAuth) expired(rec SessionRecord, now time.Time) bool {
	if !e.policy.Expires() {
		return false
	}
	return now.Sub(rec.CreatedAt) > e.policy.TTL
}

// PruneExpired deletes every expired record and reports how many were
// removed. It is a no-op for a non-expiring policy.
func (e *ExpiringSessionAuth) PruneExpired(ctx context.Context) (int, error) {
	if !e.policy.Expires() {
		return 0, nil
	}
	now := e.clock.Now()
	return e.store.DeleteWhere(ctx, func(rec SessionRecord) bool {
		return e.expired(rec, now)
	})
}

// Close stops the background pruner, if any. It is safe to call more than
// once.
func (e *ExpiringSessionAuth) Close() error {
	e.closeOnce.Do(func() { close(e.stopCh) })
	e.wg.Wait()
	return nil
}

func (e *ExpiringSessionAuth) pruneLoop(interval time.Duration) {
	defer e.wg.Done()
	ticker := e.clock.NewTicker(interval, pruneTickerID)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.Channel():
			n, err := e.PruneExpired(context.Background())
			if err != nil {
				e.logf("prune sessions: %v", err)
				continue
			}
			if n > 0 {
				e.logf("pruned %d expired sessions", n)
			}
		}
	}
}
