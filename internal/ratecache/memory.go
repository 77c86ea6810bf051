// Package ratecache provides the in-memory snapshot store behind
// ports.RateCache. One snapshot per base currency, overwritten on refresh.
package ratecache

import (
	"strings"
	"sync"

	"github.com/tillpoint/pos-backend/internal/models"
)

// MemoryCache keeps snapshots for the lifetime of the process. Expiry is the
// resolver's concern: expired entries stay readable so they can be served
// stale when every provider is down.
type MemoryCache struct {
	mu        sync.RWMutex
	snapshots map[string]models.RateSnapshot
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{snapshots: make(map[string]models.RateSnapshot)}
}

// Get returns the snapshot for the base currency, if one was ever stored.
func (c *MemoryCache) Get(baseCurrency string) (models.RateSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[strings.ToUpper(baseCurrency)]
	return snap, ok
}

// Set stores the snapshot, replacing any previous one for the same base.
func (c *MemoryCache) Set(snapshot models.RateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[strings.ToUpper(snapshot.Base)] = snapshot
}
