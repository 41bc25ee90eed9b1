package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores public month snapshots in Redis so calendar navigation
// does not hit the database on every request. Writers invalidate the
// affected month whenever bookings change, so the TTL is only a
// backstop. A nil Redis client disables caching; every method then
// degrades to a no-op and callers recompute from the database.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCache returns a snapshot cache over the given client. rdb may be
// nil when Redis is unavailable.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: "avail"}
}

func (c *Cache) key(year int, month time.Month) string {
	return fmt.Sprintf("%s:%04d-%02d", c.prefix, year, int(month))
}

// Get returns the cached snapshot for a month, or false when the key
// is missing, unreadable or caching is disabled.
func (c *Cache) Get(ctx context.Context, year int, month time.Month) (*Snapshot, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(year, month)).Bytes()
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Set stores a snapshot under its month key. Failures are logged and
// otherwise ignored; the cache is derived state.
func (c *Cache) Set(ctx context.Context, snap Snapshot) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(snap.Year, time.Month(snap.Month)), raw, c.ttl).Err(); err != nil {
		log.Printf("availability-cache: set failed: %v", err)
	}
}

// InvalidateDate drops the cached snapshot of the month containing the
// given YYYY-MM-DD date. Booking writers call this after every create,
// transition, edit or delete so the next read recomputes.
func (c *Cache) InvalidateDate(ctx context.Context, date string) {
	if c == nil || c.rdb == nil {
		return
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(d.Year(), d.Month())).Err(); err != nil {
		log.Printf("availability-cache: invalidate failed: %v", err)
	}
}
