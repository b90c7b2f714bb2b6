package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, s
}

func TestDeduper_AcquireOnce(t *testing.T) {
	rdb, s := newTestRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, "reply", 7))
	assert.False(t, d.AcquireOnce(ctx, "reply", 7))
	assert.True(t, d.AcquireOnce(ctx, "reply", 8))

	s.FastForward(2 * time.Minute)
	assert.True(t, d.AcquireOnce(ctx, "reply", 7))
}

func TestDeduper_Release(t *testing.T) {
	rdb, _ := newTestRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	ctx := context.Background()

	require.True(t, d.AcquireOnce(ctx, "reply", 1))
	require.NoError(t, d.Release(ctx, "reply", 1))
	assert.True(t, d.AcquireOnce(ctx, "reply", 1))
}

func TestDeduper_RedisDownAllowsProcessing(t *testing.T) {
	rdb, s := newTestRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	s.Close()

	assert.True(t, d.AcquireOnce(context.Background(), "reply", 1))
}

func TestRetryCounter(t *testing.T) {
	rdb, s := newTestRedis(t)
	rc := NewRetryCounter(rdb, time.Minute)
	ctx := context.Background()
	key := FormatRetryKey("reply", 3)

	n, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := int64(1); i <= 3; i++ {
		n, err = rc.IncrementAndGet(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.True(t, s.TTL(key) > 0)

	require.NoError(t, rc.Reset(ctx, key))
	n, err = rc.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}
