// internal/rules/cache.go
package rules

import (
	"sync"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

/*
 * Per-organization compiled-engine cache.
 *
 * Read-mostly map of organization id to a compiled instance (an operator
 * registry with custom operators applied) plus its build time. Entries
 * expire after a fixed TTL and are invalidated explicitly on any named
 * condition or rule mutation; rebuilds are lazy on next access, there is no
 * background refresh.
 *
 * A rebuild race (two requests both finding a stale entry and rebuilding)
 * is safe: builds are idempotent and side-effect-free, so at worst one
 * build is wasted. No cross-process coordination exists; in a multi-instance
 * deployment each instance may serve a stale compiled registry for up to one
 * TTL window, which is an accepted staleness bound because resolution and
 * evaluation always read current rows from the store.
 */

type cacheEntry struct {
	registry *OperatorRegistry
	builtAt  time.Time
}

type engineCache struct {
	mu      sync.RWMutex
	entries map[types.OrgID]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newEngineCache(ttl time.Duration, now func() time.Time) *engineCache {
	if now == nil {
		now = time.Now
	}
	return &engineCache{
		entries: make(map[types.OrgID]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// get returns a fresh compiled instance for the organization, or nil.
func (c *engineCache) get(orgID types.OrgID) *OperatorRegistry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[orgID]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.builtAt) > c.ttl {
		return nil
	}
	return entry.registry
}

// put stores a freshly built instance. Wholesale replacement; entries are
// never patched incrementally.
func (c *engineCache) put(orgID types.OrgID, reg *OperatorRegistry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[orgID] = cacheEntry{registry: reg, builtAt: c.now()}
}

// invalidate drops the organization's entry.
func (c *engineCache) invalidate(orgID types.OrgID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orgID)
}

// invalidateAll drops every entry. Used when the custom operator set changes.
func (c *engineCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[types.OrgID]cacheEntry)
}
