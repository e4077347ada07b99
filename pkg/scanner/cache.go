package scanner

import (
	"sync"
	"time"
)

const scanTTL = 300 * time.Second

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// Cache holds scan results keyed by scan_id for 300s sliding eviction
// (§3 SecurityScanResult lifetime, §8 Scan-cache coherence). It is
// process-local, mutex-guarded, and never persisted (§5 Atomicity).
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache constructs an empty scan cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Put stores result under its own ScanID, sliding the TTL forward.
func (c *Cache) Put(result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[result.ScanID] = cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(scanTTL),
	}
}

// Lookup retrieves the cached result for scanID if present and unexpired,
// sliding the TTL forward on each read (§5 "readers see a consistent
// snapshot for the 300s TTL").
func (c *Cache) Lookup(scanID string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scanID]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, scanID)
		return nil, false
	}
	entry.expiresAt = time.Now().Add(scanTTL)
	c.entries[scanID] = entry
	return entry.result, true
}

// ValidateConfirmation implements the confirmation-hash binding rule
// (§4.5.1): a caller re-submitting {confirmed, scan_id} must match the
// code_hash stored with that scan_id, or the cache entry has expired.
func (c *Cache) ValidateConfirmation(scanID, codeHash string) (*Result, bool) {
	result, ok := c.Lookup(scanID)
	if !ok {
		return nil, false
	}
	if result.CodeHash != codeHash {
		return nil, false
	}
	return result, true
}

// Sweep evicts all expired entries. Called periodically by the daemon's
// background janitor (SPEC_FULL §11, robfig/cron wiring); eviction is also
// lazy on Lookup, so Sweep is belt-and-suspenders, not load-bearing.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}
