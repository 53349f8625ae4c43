package drafts

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skip redis tests: redis unavailable at %q: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisKV(t *testing.T) {
	client := openTestRedis(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("circles-test-%d", time.Now().UnixNano())
	kv := NewRedisKV(client, prefix, time.Minute)

	_, ok, err := kv.GetItem(ctx, NewCircleKey)
	require.NoError(t, err)
	assert.False(t, ok)

	store := NewStore(kv)
	require.NoError(t, store.Save(ctx, NewCircleKey, sampleDrafts()))
	assert.Equal(t, sampleDrafts(), store.Load(ctx, NewCircleKey))

	ttl, err := client.TTL(ctx, prefix+":"+NewCircleKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Clear(ctx, NewCircleKey))
	_, ok, err = kv.GetItem(ctx, NewCircleKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
