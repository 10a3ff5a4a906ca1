package cache

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounter(t *testing.T) (*miniredis.Miniredis, *redisTokenCounter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, &redisTokenCounter{client: client}
}

func TestRedisTokenCounter_Next(t *testing.T) {
	mr, counter := newTestCounter(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := counter.Next(ctx, 1, "2026-03-01")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := counter.Next(ctx, 1, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	assert.Equal(t, tokenKeyTTL, mr.TTL("counter_token:1:2026-03-01"))
}

func TestRedisTokenCounter_ConcurrentNext(t *testing.T) {
	_, counter := newTestCounter(t)

	const n = 25
	results := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := counter.Next(context.Background(), 2, "2026-03-01")
			assert.NoError(t, err)
			results[i] = token
		}(i)
	}
	wg.Wait()

	sort.Ints(results)
	for i, token := range results {
		assert.Equal(t, i+1, token)
	}
}

func TestRedisTokenCounter_ListByDate(t *testing.T) {
	_, counter := newTestCounter(t)
	ctx := context.Background()

	_, _ = counter.Next(ctx, 3, "2026-03-01")
	_, _ = counter.Next(ctx, 1, "2026-03-01")
	_, _ = counter.Next(ctx, 1, "2026-03-01")
	_, _ = counter.Next(ctx, 1, "2026-03-02")

	tokens, err := counter.ListByDate(ctx, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, 1, tokens[0].CounterNo)
	assert.Equal(t, 2, tokens[0].TokenNumber)
	assert.Equal(t, 3, tokens[1].CounterNo)
	assert.Equal(t, 1, tokens[1].TokenNumber)

	empty, err := counter.ListByDate(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
