package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUSlidingExpiry(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", "1")

	clk.advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("entry should still be live")
	}
	// the read above extended the expiry
	clk.advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("entry should have been refreshed by Get")
	}
	clk.advance(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on access")
	}
}

func TestLRUCapacityEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	var evicted []string
	c.OnEvict(func(key, _ string, reason EvictReason) {
		if reason == EvictCapacity {
			evicted = append(evicted, key)
		}
	})

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("least recently used entry should be gone")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("expected b to be evicted, got %v", evicted)
	}
}

func TestLRUCleanExpiredAndManager(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	reasons := map[string]EvictReason{}
	c.OnEvict(func(key, _ string, reason EvictReason) { reasons[key] = reason })

	c.Set("a", "1")
	c.Set("b", "2")
	clk.advance(30 * time.Second)
	c.Set("c", "3")
	clk.advance(45 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 2 {
		t.Fatalf("expected 2 expired entries, got %d", n)
	}
	if c.Size() != 1 || reasons["a"] != EvictExpired || reasons["b"] != EvictExpired {
		t.Fatalf("unexpected state: size=%d reasons=%v", c.Size(), reasons)
	}

	c.Delete("c")
	if reasons["c"] != EvictDeleted {
		t.Fatalf("delete should notify, got %v", reasons)
	}
}

func TestLRUGetOrCreate(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	calls := 0
	create := func() string { calls++; return "fresh" }

	v, created := c.GetOrCreate("k", create)
	if !created || v != "fresh" {
		t.Fatalf("expected creation")
	}
	v, created = c.GetOrCreate("k", create)
	if created || v != "fresh" || calls != 1 {
		t.Fatalf("expected cached value, calls=%d", calls)
	}
}

func TestManagerRunStopsWithContext(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}
