// file: internal/tokencache/cache_test.go
// version: 1.0.0
// guid: 4a9b2c3d-5e6f-7081-92a3-b4c5d6e7f809

package tokencache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetMissing(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("nobody"); ok {
		t.Fatal("expected miss for user never set")
	}
}

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("u1", "tok-abc")
	tok, ok := c.Get("u1")
	if !ok || tok != "tok-abc" {
		t.Fatalf("expected tok-abc, got %q ok=%v", tok, ok)
	}
}

func TestExpiredEntryRemovedOnGet(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("u1", "tok-abc")

	// Jump past the TTL.
	c.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	if _, ok := c.Get("u1"); ok {
		t.Fatal("expected expired token to be a miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected lazy eviction to remove the entry, len=%d", c.Len())
	}
}

func TestGetWithTTLReportsRemainingValidity(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("u1", "tok-abc")

	// Half the window gone: half the window must be reported, not the
	// full TTL.
	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	tok, remaining, ok := c.GetWithTTL("u1")
	if !ok || tok != "tok-abc" {
		t.Fatalf("expected hit, got %q ok=%v", tok, ok)
	}
	if remaining != 30*time.Minute {
		t.Fatalf("expected 30m remaining, got %v", remaining)
	}
}

func TestGetWithTTLExpiredEntryIsMiss(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("u1", "tok-abc")

	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, remaining, ok := c.GetWithTTL("u1"); ok || remaining != 0 {
		t.Fatalf("expected miss with zero remaining, got remaining=%v ok=%v", remaining, ok)
	}
	if c.Len() != 0 {
		t.Fatalf("expected lazy eviction to remove the entry, len=%d", c.Len())
	}
}

func TestSetOverwrites(t *testing.T) {
	c := New(time.Minute)
	c.Set("u1", "first")
	c.Set("u1", "second")
	tok, ok := c.Get("u1")
	if !ok || tok != "second" {
		t.Fatalf("expected second token to win, got %q ok=%v", tok, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected a single entry, len=%d", c.Len())
	}
}

func TestSetResetsExpiry(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("u1", "first")

	// Re-set just before the first expiry; the new expiry counts from now.
	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	c.Set("u1", "second")

	c.now = func() time.Time { return base.Add(90 * time.Minute) }
	tok, ok := c.Get("u1")
	if !ok || tok != "second" {
		t.Fatalf("expected refreshed entry to still be live, got %q ok=%v", tok, ok)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute)
	c.Invalidate("absent") // must be a harmless no-op
	c.Set("u1", "tok")
	c.Invalidate("u1")
	if _, ok := c.Get("u1"); ok {
		t.Fatal("expected invalidated token to be gone")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("u1", "a")
	c.Set("u2", "b")
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, len=%d", c.Len())
	}
	if _, ok := c.Get("u1"); ok {
		t.Fatal("expected u1 to be gone after clear")
	}
	if _, ok := c.Get("u2"); ok {
		t.Fatal("expected u2 to be gone after clear")
	}
}

func TestCleanupExpiredRemovesOnlyExpired(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("stale1", "a")
	c.Set("stale2", "b")

	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	c.Set("fresh", "c")

	// stale1/stale2 expire at base+1h, fresh at base+1h30m.
	c.now = func() time.Time { return base.Add(time.Hour + time.Minute) }
	if removed := c.CleanupExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected only fresh to remain, len=%d", c.Len())
	}
	if tok, ok := c.Get("fresh"); !ok || tok != "c" {
		t.Fatalf("expected fresh to survive the sweep, got %q ok=%v", tok, ok)
	}
}

func TestCleanupExpiredEmptyCache(t *testing.T) {
	c := New(time.Minute)
	if removed := c.CleanupExpired(); removed != 0 {
		t.Fatalf("expected 0 removed on empty cache, got %d", removed)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	const workers = 16
	const iterations = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			shared := "shared"
			own := fmt.Sprintf("user-%d", id)
			for j := 0; j < iterations; j++ {
				c.Set(shared, fmt.Sprintf("tok-%d-%d", id, j))
				c.Set(own, fmt.Sprintf("own-%d", j))
				c.Get(shared)
				c.Get(own)
				if j%50 == 0 {
					c.Invalidate(shared)
				}
				if j%77 == 0 {
					c.CleanupExpired()
				}
			}
		}(i)
	}
	wg.Wait()

	// Every per-worker key must hold its own final write.
	for i := 0; i < workers; i++ {
		key := fmt.Sprintf("user-%d", i)
		tok, ok := c.Get(key)
		if !ok || tok != fmt.Sprintf("own-%d", iterations-1) {
			t.Fatalf("lost update for %s: got %q ok=%v", key, tok, ok)
		}
	}
	// The shared key, if present, must be one of the written values.
	if tok, ok := c.Get("shared"); ok {
		var matched bool
		for i := 0; i < workers && !matched; i++ {
			for j := 0; j < iterations; j++ {
				if tok == fmt.Sprintf("tok-%d-%d", i, j) {
					matched = true
					break
				}
			}
		}
		if !matched {
			t.Fatalf("shared key holds a token no worker wrote: %q", tok)
		}
	}
}
