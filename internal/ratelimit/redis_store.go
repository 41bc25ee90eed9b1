package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the sliding window over a Redis sorted set per
// identity: member scores are request timestamps in milliseconds, the
// script discards entries older than the window, compares the
// remainder to the cap and records the new timestamp when under it.
// The whole check-and-record runs atomically inside the script.
type RedisStore struct {
	rdb    *redis.Client
	script *redis.Script
}

// NewRedisStore returns a store over the given client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		script: redis.NewScript(`
			local key = KEYS[1]
			local now_ms = tonumber(ARGV[1])
			local window_ms = tonumber(ARGV[2])
			local max = tonumber(ARGV[3])

			redis.call('ZREMRANGEBYSCORE', key, 0, now_ms - window_ms)
			local count = redis.call('ZCARD', key)
			if count < max then
				redis.call('ZADD', key, now_ms, ARGV[4])
				redis.call('PEXPIRE', key, window_ms)
				return {1, max - count - 1, 0}
			end
			local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
			local retry_ms = 0
			if oldest[2] then
				retry_ms = (tonumber(oldest[2]) + window_ms) - now_ms
				if retry_ms < 0 then retry_ms = 0 end
			end
			return {0, 0, retry_ms}
		`),
	}
}

// Take runs the window script for one request.
func (s *RedisStore) Take(ctx context.Context, key string, max int, window time.Duration) (bool, int, time.Duration, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)
	vals, err := s.script.Run(ctx, s.rdb, []string{key},
		now.UnixMilli(), window.Milliseconds(), max, member).Result()
	if err != nil {
		return false, 0, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return true, 0, 0, nil
	}
	allowed := asInt64(arr[0]) == 1
	remaining := int(asInt64(arr[1]))
	retryAfter := time.Duration(asInt64(arr[2])) * time.Millisecond
	return allowed, remaining, retryAfter, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
