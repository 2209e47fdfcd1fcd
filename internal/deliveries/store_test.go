package deliveries

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_ClaimOnce(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	store := NewRedisStore(client, "test:delivery:")
	ctx := context.Background()

	ok, err := store.Claim(ctx, "msg_1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.Exists("test:delivery:msg_1"))

	again, err := store.Claim(ctx, "msg_1", time.Minute)
	require.NoError(t, err)
	require.False(t, again)

	other, err := store.Claim(ctx, "msg_2", time.Minute)
	require.NoError(t, err)
	require.True(t, other)
}

func TestRedisStore_ReleaseAndExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	store := NewRedisStore(client, "")
	ctx := context.Background()

	ok, err := store.Claim(ctx, "msg_1", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "msg_1"))
	ok, err = store.Claim(ctx, "msg_1", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok, "released id should be claimable again")

	// advance miniredis clock past TTL
	m.FastForward(3 * time.Second)
	ok, err = store.Claim(ctx, "msg_1", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok, "expired id should be claimable again")
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ok, err := s.Claim(context.Background(), "x", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Release(context.Background(), "x"))
}
