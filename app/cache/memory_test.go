package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetNXOnlyOnce(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	ok, _ := c.SetNX(ctx, "k", "first", time.Minute)
	if !ok {
		t.Fatal("first SetNX should store")
	}
	ok, _ = c.SetNX(ctx, "k", "second", time.Minute)
	if ok {
		t.Fatal("second SetNX should not store")
	}
	v, found, _ := c.Get(ctx, "k")
	if !found || v != "first" {
		t.Fatalf("got %q found=%v", v, found)
	}
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &memoryCache{items: map[string]memoryEntry{}, now: func() time.Time { return now }}
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", time.Minute)
	now = now.Add(2 * time.Minute)
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Fatal("entry should have expired")
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	_ = c.Set(ctx, "delivery:lagos:ikeja:100", "a", 0)
	_ = c.Set(ctx, "delivery:oyo::100", "b", 0)
	_ = c.Set(ctx, "idem:order:create:x", "c", 0)

	_ = c.DeletePrefix(ctx, KeyDeliveryPrefix)

	if _, found, _ := c.Get(ctx, "delivery:oyo::100"); found {
		t.Fatal("delivery key should be gone")
	}
	if _, found, _ := c.Get(ctx, "idem:order:create:x"); !found {
		t.Fatal("unrelated key should survive")
	}
}

func TestMemorySweepsUnreadExpiredKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &memoryCache{items: map[string]memoryEntry{}, now: func() time.Time { return now }}
	ctx := context.Background()

	for _, k := range []string{"delivery:lagos:ikeja:100", "delivery:lagos:ikeja:200", "delivery:oyo::300"} {
		_ = c.Set(ctx, k, "1500", 10*time.Minute)
	}
	_ = c.Set(ctx, "idem:order:create:x", "order-1", 24*time.Hour)

	now = now.Add(11 * time.Minute)
	_ = c.Set(ctx, "delivery:fct:abuja:100", "2500", 10*time.Minute)

	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected expired delivery keys to be reclaimed, %d entries left", n)
	}
	if _, found, _ := c.Get(ctx, "idem:order:create:x"); !found {
		t.Fatal("live key should survive the sweep")
	}
}
