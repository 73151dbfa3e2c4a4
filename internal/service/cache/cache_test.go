package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type sample struct {
	Name  string   `json:"name"`
	Moves []string `json:"moves"`
}

func newRedisStore(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheServiceFromClient(client, nil), mr
}

func TestCacheServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	in := sample{Name: "game", Moves: []string{"e2e4", "e7e5"}}
	if err := store.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out sample
	if err := store.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Name != "game" || len(out.Moves) != 2 {
		t.Fatalf("unexpected value: %+v", out)
	}

	mr.FastForward(2 * time.Minute)
	var expired sample
	if err := store.Get(ctx, "k", &expired); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if expired.Name != "" {
		t.Fatalf("expected miss after ttl, got %+v", expired)
	}
}

func TestCacheServiceMissAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	var out sample
	if err := store.Get(ctx, "absent", &out); err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if err := store.Set(ctx, "k", sample{Name: "x"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if err := store.Get(ctx, "k", &out); err != nil || out.Name != "" {
		t.Fatalf("expected miss after delete, got %+v err=%v", out, err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", sample{Name: "a"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out sample
	if err := store.Get(ctx, "k", &out); err != nil || out.Name != "a" {
		t.Fatalf("get: %+v err=%v", out, err)
	}

	now = now.Add(time.Minute)
	var after sample
	if err := store.Get(ctx, "k", &after); err != nil || after.Name != "" {
		t.Fatalf("expected expiry, got %+v err=%v", after, err)
	}
}

func TestParseRedisURL(t *testing.T) {
	cfg, err := ParseRedisURL("redis://:secret@cache.local:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Host != "cache.local" || cfg.Port != 6380 || cfg.Password != "secret" || cfg.DB != 2 || cfg.TLS {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	cfg, err = ParseRedisURL("rediss://cache.local")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != 6379 || !cfg.TLS {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := ParseRedisURL("http://cache.local"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
