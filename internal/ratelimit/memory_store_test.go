package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vespanova/booking-api/internal/config"
)

func TestMemoryStoreSlidingWindow(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	// Three requests fit under MAX=3; the fourth is denied.
	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := store.Take(ctx, "rl:ana@example.com", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}
	allowed, remaining, retry, err := store.Take(ctx, "rl:ana@example.com", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, time.Minute, retry)

	// Half a window later the oldest entry still blocks, but the wait
	// shrinks accordingly.
	clock = clock.Add(30 * time.Second)
	allowed, _, retry, err = store.Take(ctx, "rl:ana@example.com", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 30*time.Second, retry)

	// Once the window has fully passed the key is clean again.
	clock = clock.Add(31 * time.Second)
	allowed, remaining, _, err = store.Take(ctx, "rl:ana@example.com", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestMemoryStoreSweepsStaleIdentities(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	_, _, _, err := store.Take(ctx, "rl:one-off@example.com", 3, time.Minute)
	require.NoError(t, err)

	// A later request under a different identity sweeps out keys whose
	// window has fully expired, so one-off identities do not pile up.
	clock = clock.Add(2 * time.Minute)
	_, _, _, err = store.Take(ctx, "rl:other@example.com", 3, time.Minute)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.entries, "rl:one-off@example.com")
	assert.Contains(t, store.entries, "rl:other@example.com")
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := store.Take(ctx, "rl:a@example.com", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, _, _, err := store.Take(ctx, "rl:b@example.com", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, int, time.Duration) (bool, int, time.Duration, error) {
	return false, 0, 0, errors.New("store down")
}

func TestLimiterFailsOpen(t *testing.T) {
	l := New(failingStore{}, config.RateLimitConfig{Enabled: true, Max: 3, Window: 60, Prefix: "rl:booking"})
	d := l.Allow(context.Background(), "ana@example.com")
	assert.True(t, d.Allowed)
}

func TestLimiterDisabled(t *testing.T) {
	l := New(NewMemoryStore(), config.RateLimitConfig{Enabled: false, Max: 1, Window: 60, Prefix: "rl:booking"})
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "ana@example.com").Allowed)
	}
}

func TestLimiterAnonymousFallback(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, config.RateLimitConfig{Enabled: true, Max: 1, Window: 60, Prefix: "rl:booking"})
	assert.True(t, l.Allow(context.Background(), "").Allowed)
	// All unidentified clients share one bucket.
	assert.False(t, l.Allow(context.Background(), "").Allowed)
}
