package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "value-a")
	got, ok := c.Get("a")
	if !ok || got != "value-a" {
		t.Errorf("expected value-a, got %q (ok=%v)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("missing key should not resolve")
	}
}

func TestSetOverwrites(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)
	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if c.Size() != 1 {
		t.Errorf("overwrite should not grow the cache, size %d", c.Size())
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch a so b becomes the least recently used.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive")
	}
	if c.Size() != 2 {
		t.Errorf("size should stay at capacity, got %d", c.Size())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("k", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should not resolve")
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry should not resolve")
	}

	// Deleting a missing key is a no-op.
	c.Delete("missing")
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if cleaned := c.CleanExpired(); cleaned != 2 {
		t.Errorf("expected 2 cleaned entries, got %d", cleaned)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, size %d", c.Size())
	}
}
