package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "technova:"), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	stored := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Set(ctx, "products:1", Entry{Value: []byte(`{"a":1}`), StoredAt: stored}, time.Minute))
	assert.True(t, mr.Exists("technova:products:1"))

	e, ok, err := s.Get(ctx, "products:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(e.Value))
	assert.True(t, e.StoredAt.Equal(stored))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "products:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreDeletePrefix(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "products:1", Entry{Value: []byte("1")}, time.Minute))
	require.NoError(t, s.Set(ctx, "products:2", Entry{Value: []byte("2")}, time.Minute))
	require.NoError(t, s.Set(ctx, "nav:all", Entry{Value: []byte("3")}, time.Minute))

	require.NoError(t, s.DeletePrefix(ctx, "products:"))
	assert.False(t, mr.Exists("technova:products:1"))
	assert.False(t, mr.Exists("technova:products:2"))
	assert.True(t, mr.Exists("technova:nav:all"))
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("technova:bad", "not-json"))

	_, ok, err := s.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}
