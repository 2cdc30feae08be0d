package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ConsumesTokens(t *testing.T) {
	store := NewMemoryStore(3, time.Minute)

	for i := 0; i < 3; i++ {
		d, err := store.Allow(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := store.Allow(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Positive(t, d.RetryAfter)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)

	d1, _ := store.Allow(context.Background(), "sess-1")
	d2, _ := store.Allow(context.Background(), "sess-2")

	assert.True(t, d1.Allowed)
	assert.True(t, d2.Allowed)
}

func TestMemoryStore_RefillsOverTime(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	now := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		d, _ := store.Allow(context.Background(), "sess-1")
		require.True(t, d.Allowed)
	}

	d, _ := store.Allow(context.Background(), "sess-1")
	require.False(t, d.Allowed)

	// one interval restores one token
	now = now.Add(time.Minute)
	d, _ = store.Allow(context.Background(), "sess-1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// a long pause never overfills past capacity
	now = now.Add(time.Hour)
	d, _ = store.Allow(context.Background(), "sess-1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}
