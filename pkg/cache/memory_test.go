package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGetRoundTrip(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	if err := mc.Set(ctx, "k", payload{Name: "x", N: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "x" || got.N != 3 {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); err != ErrCacheMiss {
		t.Fatalf("expected miss, got %v", err)
	}

	if err := mc.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "k", &s); err != ErrCacheMiss {
		t.Fatalf("expected expired miss, got %v", err)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", time.Minute) // evicts a

	ok, _ := mc.Exists(ctx, "a")
	if ok {
		t.Fatalf("expected a evicted")
	}
	ok, _ = mc.Exists(ctx, "c")
	if !ok {
		t.Fatalf("expected c present")
	}
}

func TestKeyBuilder(t *testing.T) {
	got := Key("proof", "2330", "2025-06-02")
	if got != "proof:2330:2025-06-02" {
		t.Fatalf("unexpected key %q", got)
	}
}
