// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go caches serialized template listings in Valkey so repeated
// listing requests skip both store reads and the rating aggregation.
// Any template write clears every cached listing.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listingKeyPrefix = "listing:"

	// DefaultListingTTL is how long a listing stays cached.
	DefaultListingTTL = 2 * time.Minute
)

// Observer is notified of cache lookups. It may be nil.
type Observer interface {
	CacheLookup(hit bool)
}

// ListingCache manages listing responses in Valkey. A nil *ListingCache
// is valid and caches nothing.
type ListingCache struct {
	client   *redis.Client
	ttl      time.Duration
	observer Observer
}

// NewListingCache creates a listing cache backed by the given client.
func NewListingCache(client *redis.Client, ttl time.Duration, observer Observer) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl, observer: observer}
}

// Get returns the cached body for key.
func (lc *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if lc == nil {
		return nil, false
	}
	val, err := lc.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("listing cache get error", "key", key, "error", err)
		}
		lc.observe(false)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	lc.observe(true)
	return val, true
}

// Set stores body under key with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, key string, body []byte) {
	if lc == nil {
		return
	}
	if err := lc.client.Set(ctx, listingKeyPrefix+key, body, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached listing. Returns the number of keys
// deleted.
func (lc *ListingCache) InvalidateAll(ctx context.Context) int {
	if lc == nil {
		return 0
	}
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("listing cache cleared", "deleted", deleted)
	}
	return deleted
}

func (lc *ListingCache) observe(hit bool) {
	if lc.observer != nil {
		lc.observer.CacheLookup(hit)
	}
}

// ListingKey builds a cache key from a route name and its query
// parameters. Parameter order does not matter.
func ListingKey(route string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(route)
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			b.WriteByte('|')
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
