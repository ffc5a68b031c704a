package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestFetchJSONPopulatesOnMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return map[string]int{"count": 3}, nil
	}

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.Equal(t, 3, out["count"])

	out = nil
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.Equal(t, 3, out["count"])
	require.Equal(t, 1, loads)
}

func TestBumpChangesBuiltKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestNilClientPassesThrough(t *testing.T) {
	c := NewCache(nil, time.Minute)
	ctx := context.Background()

	loads := 0
	var out int
	loader := func(context.Context) (any, error) {
		loads++
		return 7, nil
	}
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.NoError(t, c.FetchJSON(ctx, "k", &out, loader))
	require.Equal(t, 7, out)
	require.Equal(t, 2, loads)
	require.NoError(t, c.Bump(ctx))
}
