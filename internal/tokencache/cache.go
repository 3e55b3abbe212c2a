// file: internal/tokencache/cache.go
// version: 1.0.0
// guid: 3f8a1b2c-4d5e-6f70-8192-a3b4c5d6e7f8

package tokencache

import (
	"log"
	"sync"
	"time"
)

// DefaultTTL is how long an exchanged downstream token stays usable.
// Downstream tokens are minted for one hour; we cache them for exactly
// that window.
const DefaultTTL = time.Hour

type entry struct {
	token     string
	expiresAt time.Time
}

// Cache stores one downstream token per user with absolute expiry.
// It is safe for concurrent use; a single mutex guards the whole map and
// every operation holds it for its full duration. Operations are pure
// in-memory work plus a clock read, so the lock is never held across
// anything that can block — in particular never across a token exchange.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration

	// now is swappable so tests can control expiry deterministically.
	now func() time.Time
}

// New creates a cache with the given TTL. ttl <= 0 falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached token for userID if one exists and has not expired.
// An expired entry is removed on the spot so callers never observe a stale
// token, even if no cleanup sweep has run.
func (c *Cache) Get(userID string) (string, bool) {
	token, _, ok := c.GetWithTTL(userID)
	return token, ok
}

// GetWithTTL is Get plus the entry's remaining validity, so callers can
// report how long the token is actually still good for rather than the
// full cache TTL.
func (c *Cache) GetWithTTL(userID string) (string, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[userID]
	if !ok {
		return "", 0, false
	}
	now := c.now()
	if !now.Before(e.expiresAt) {
		delete(c.items, userID)
		log.Printf("[DEBUG] token for user %s expired, removed from cache", userID)
		return "", 0, false
	}
	return e.token, e.expiresAt.Sub(now), true
}

// Set stores a token for userID, replacing any previous entry and resetting
// its expiry to now + TTL.
func (c *Cache) Set(userID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[userID] = entry{token: token, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate removes the entry for userID. Removing an absent user is a no-op.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[userID]; ok {
		delete(c.items, userID)
		log.Printf("[DEBUG] token invalidated for user %s", userID)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}

// CleanupExpired removes every entry whose expiry has passed. The clock is
// read once at the start of the sweep so all entries are judged against the
// same instant. Get's lazy eviction keeps results correct without this, but
// only a sweep bounds memory for users that never come back.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for userID, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, userID)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[DEBUG] cleaned up %d expired tokens", removed)
	}
	return removed
}

// Len reports the number of stored entries, expired-but-unswept included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
