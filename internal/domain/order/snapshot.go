package order

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// SnapshotCache holds the most recent order snapshot delivered by a
// Repository watch. It belongs to the application layer: the aggregation
// engine itself never subscribes, caches, or memoizes across calls.
//
// Safe for concurrent use. Readers get a copy and may not observe a snapshot
// delivered after their read started.
type SnapshotCache struct {
	mu     sync.RWMutex
	orders Snapshot
}

// NewSnapshotCache returns an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Follow primes the cache with a full read and then tracks store changes
// until ctx is cancelled. It returns the watch stop handle.
func (c *SnapshotCache) Follow(ctx context.Context, repo Repository) (func(), error) {
	initial, err := repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "prime snapshot")
	}
	c.set(initial)

	stop, err := repo.Watch(ctx, c.set)
	if err != nil {
		return nil, errors.Wrap(err, "watch orders")
	}
	return stop, nil
}

func (c *SnapshotCache) set(orders Snapshot) {
	c.mu.Lock()
	c.orders = orders
	c.mu.Unlock()
}

// Snapshot returns a copy of the latest known order set.
func (c *SnapshotCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(Snapshot, len(c.orders))
	copy(out, c.orders)
	return out
}
