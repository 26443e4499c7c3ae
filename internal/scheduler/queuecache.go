package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sarat-asymmetrica/xtalforge/internal/optimizer"
)

// QueueCache caches a LocalOptimizer's queue snapshot, refreshed at most
// once every minGap. Concurrent callers that arrive while a refresh is
// already in flight reuse that single refresh's result rather than each
// starting their own round trip (spec.md §4.8 step 1, §5's "exactly one
// caller at a time" guarantee).
type QueueCache struct {
	opt    optimizer.LocalOptimizer
	minGap time.Duration

	mu          sync.Mutex
	last        []optimizer.QueueEntry
	lastRefresh time.Time
	group       singleflight.Group
}

// NewQueueCache returns a cache around opt that refreshes no more often
// than minGap.
func NewQueueCache(opt optimizer.LocalOptimizer, minGap time.Duration) *QueueCache {
	return &QueueCache{opt: opt, minGap: minGap}
}

// Snapshot returns the current cached queue, refreshing first if minGap
// has elapsed since the last refresh.
func (q *QueueCache) Snapshot(ctx context.Context) ([]optimizer.QueueEntry, error) {
	q.mu.Lock()
	stale := time.Since(q.lastRefresh) >= q.minGap
	cached := q.last
	q.mu.Unlock()

	if !stale {
		return cached, nil
	}

	v, err, _ := q.group.Do("refresh", func() (interface{}, error) {
		entries, err := q.opt.GetQueue(ctx)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		q.last = entries
		q.lastRefresh = time.Now()
		q.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		// Timeout or communication error: spec.md §5 leaves status
		// unchanged for this tick and retries next time, so we hand back
		// whatever was last known good rather than nothing.
		return cached, err
	}
	return v.([]optimizer.QueueEntry), nil
}
