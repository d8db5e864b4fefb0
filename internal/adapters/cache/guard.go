package cache

import (
	"context"
	"time"

	"github.com/tkasuk/nordwatt/pkg/logger"
	"github.com/tkasuk/nordwatt/pkg/metrics"
)

// marker value stored under idempotency flags; presence is the signal.
var ranMarker = []byte{1}

// Guard is the idempotency capability over a Store: has a keyed piece of
// work already run within its TTL.
type Guard struct {
	store Store
	log   logger.Logger
}

// NewGuard creates a Guard over store.
func NewGuard(store Store, log logger.Logger) *Guard {
	return &Guard{store: store, log: log}
}

// HasRun reports whether key was marked within its TTL. An unreadable store
// counts as not-run so the guarded work recomputes instead of failing.
func (g *Guard) HasRun(ctx context.Context, key string) bool {
	_, ok, err := g.store.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError()
		g.log.Warn(ctx, "idempotency flag unreadable, treating as not run",
			logger.String("key", key), logger.Error(err))
		return false
	}
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return ok
}

// MarkRun records that the work behind key has run, expiring after ttl.
// Write failures are logged and swallowed; the next run simply repeats the
// work.
func (g *Guard) MarkRun(ctx context.Context, key string, ttl time.Duration) {
	if err := g.store.Set(ctx, key, ranMarker, ttl); err != nil {
		metrics.RecordCacheError()
		g.log.Warn(ctx, "failed to persist idempotency flag",
			logger.String("key", key), logger.Error(err))
	}
}
