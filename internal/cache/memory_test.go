package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voiceagent/internal/config"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte{1, 2, 3}))
	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprint(i), []byte{byte(i)}))
	}
	assert.Equal(t, 2, c.Len())

	_, ok, _ := c.Get(ctx, "0")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "2")
	assert.True(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4, 20*time.Millisecond)

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	assert.Eventually(t, func() bool {
		_, ok, _ := c.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(config.CacheConfig{Backend: "memory", Size: 8, TTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Name())

	_, err = New(config.CacheConfig{Backend: "redis"}, nil)
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Backend: "memcached"}, nil)
	assert.Error(t, err)
}
