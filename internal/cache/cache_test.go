// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a client on DB 15. Skips if Valkey is
// unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, listingKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type countingObserver struct{ hits, misses int }

func (o *countingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), "", 15)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", "", 0); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestListingCacheSetAndGet(t *testing.T) {
	obs := &countingObserver{}
	lc := NewListingCache(testValkeyClient(t), time.Minute, obs)
	ctx := context.Background()

	if _, ok := lc.Get(ctx, "templates|limit=10"); ok {
		t.Error("expected cache miss")
	}

	body := []byte(`{"data":[]}`)
	lc.Set(ctx, "templates|limit=10", body)

	got, ok := lc.Get(ctx, "templates|limit=10")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != string(body) {
		t.Errorf("body mismatch: got %q, want %q", got, body)
	}
	if obs.hits != 1 || obs.misses != 1 {
		t.Errorf("observer: hits=%d misses=%d", obs.hits, obs.misses)
	}
}

func TestListingCacheInvalidateAll(t *testing.T) {
	lc := NewListingCache(testValkeyClient(t), time.Minute, nil)
	ctx := context.Background()

	for _, k := range []string{"latest", "trending", "templates|category=birthday"} {
		lc.Set(ctx, k, []byte("x"))
	}
	if n := lc.InvalidateAll(ctx); n != 3 {
		t.Errorf("deleted: got %d, want 3", n)
	}
	for _, k := range []string{"latest", "trending", "templates|category=birthday"} {
		if _, ok := lc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestNewListingCacheDefaultTTL(t *testing.T) {
	lc := NewListingCache(nil, 0, nil)
	if lc.ttl != DefaultListingTTL {
		t.Errorf("expected DefaultListingTTL (%v), got %v", DefaultListingTTL, lc.ttl)
	}
}

func TestNilListingCache(t *testing.T) {
	var lc *ListingCache
	ctx := context.Background()

	lc.Set(ctx, "k", []byte("v"))
	if _, ok := lc.Get(ctx, "k"); ok {
		t.Error("nil cache should always miss")
	}
	if n := lc.InvalidateAll(ctx); n != 0 {
		t.Errorf("nil cache invalidated %d keys", n)
	}
}

func TestListingKey(t *testing.T) {
	a := ListingKey("templates", url.Values{"limit": {"10"}, "category": {"Birthday Cards"}})
	b := ListingKey("templates", url.Values{"category": {"Birthday Cards"}, "limit": {"10"}})
	if a != b {
		t.Errorf("key depends on parameter order: %q vs %q", a, b)
	}
	if a != "templates|category=Birthday+Cards|limit=10" {
		t.Errorf("unexpected key %q", a)
	}
	if ListingKey("latest", nil) != "latest" {
		t.Errorf("key without params: %q", ListingKey("latest", nil))
	}
}
