// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"sync"
)

// cacheSlot holds one table name's catalog lookup: either in flight (ready
// is open) or complete (ready is closed, tables/err hold the result).
type cacheSlot struct {
	ready   chan struct{}
	tables  []DatabaseTable
	err     error
}

// cache is a single-flight, indefinitely-cached-on-success lookup keyed by
// unqualified table name, matching original_source's cache.rs: concurrent
// lookups of the same name coalesce into one fetch, and a successful result
// is kept forever (this tool has no invalidation story — the catalog is
// assumed stable for the lifetime of one Client). Unlike
// golang.org/x/sync/singleflight, a successfully completed slot is never
// forgotten, so a later call never repeats that query; a failed slot is
// dropped so the next call retries (see DESIGN.md for why
// singleflight.Group doesn't fit).
//
// Closing `ready` to signal completion plays the role of the original's
// broadcast channel: every current waiter unblocks, and — unlike a
// broadcast channel, whose receiver must be kept alive across the send —
// any waiter that starts waiting after completion still reads instantly
// from the already-closed channel.
type cache struct {
	mu    sync.Mutex
	slots map[string]*cacheSlot
}

func newCache() *cache {
	return &cache{slots: make(map[string]*cacheSlot)}
}

// get returns the cached columns for name, fetching them with fetch on a
// cache miss. Concurrent calls for the same name share one fetch. A failed
// fetch is broadcast to every current waiter but is not cached: a later
// call retries the catalog query from scratch (see DESIGN.md's schema-
// client error policy note).
func (c *cache) get(ctx context.Context, name string, fetch func(context.Context) ([]DatabaseTable, error)) ([]DatabaseTable, error) {
	c.mu.Lock()
	if slot, ok := c.slots[name]; ok {
		c.mu.Unlock()
		select {
		case <-slot.ready:
			return slot.tables, slot.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	slot := &cacheSlot{ready: make(chan struct{})}
	c.slots[name] = slot
	c.mu.Unlock()

	tables, err := fetch(ctx)
	slot.tables, slot.err = tables, err
	close(slot.ready)

	if err != nil {
		c.mu.Lock()
		if c.slots[name] == slot {
			delete(c.slots, name)
		}
		c.mu.Unlock()
	}

	return tables, err
}
