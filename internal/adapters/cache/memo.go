package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tkasuk/nordwatt/pkg/metrics"
)

// Memo is the memoization capability over a Store: typed values encoded with
// msgpack, readable until their TTL passes.
type Memo struct {
	store Store
}

// NewMemo creates a Memo over store.
func NewMemo(store Store) *Memo {
	return &Memo{store: store}
}

// Get decodes the memoized value under key into out. A store read error
// degrades to a miss; the caller recomputes.
func (m *Memo) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError()
		return false, nil
	}
	if !ok {
		metrics.RecordCacheMiss()
		return false, nil
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		// A corrupt entry is worse than a miss; drop it.
		_ = m.store.Delete(ctx, key)
		return false, fmt.Errorf("decode memoized %q: %w", key, err)
	}
	metrics.RecordCacheHit()
	return true, nil
}

// Set memoizes v under key, expiring after ttl.
func (m *Memo) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode memoized %q: %w", key, err)
	}
	if err := m.store.Set(ctx, key, raw, ttl); err != nil {
		metrics.RecordCacheError()
		return err
	}
	return nil
}

// Delete drops the memoized value under key.
func (m *Memo) Delete(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		metrics.RecordCacheError()
		return err
	}
	return nil
}
