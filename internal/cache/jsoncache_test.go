package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewJSON(rdb, time.Minute)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var dst payload
	hit, err := c.Get(ctx, "masters:zones", &dst)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "masters:zones", payload{Name: "north"}))
	hit, err = c.Get(ctx, "masters:zones", &dst)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "north", dst.Name)

	require.NoError(t, c.Invalidate(ctx, "masters:zones"))
	hit, err = c.Get(ctx, "masters:zones", &dst)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestJSONNilClientDegrades(t *testing.T) {
	var c *JSON
	hit, err := c.Get(context.Background(), "k", nil)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Set(context.Background(), "k", 1))
	require.NoError(t, c.Invalidate(context.Background(), "k"))
}
