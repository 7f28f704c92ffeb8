package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis integration test")
	}

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker_TryLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	name := "test-" + t.Name() + "-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(ctx, keyPrefix+name) })

	first := NewRedisLocker(client, "node-a")
	second := NewRedisLocker(client, "node-b")

	acquired, err := first.TryLock(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = second.TryLock(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	holder, err := client.Get(ctx, keyPrefix+name).Result()
	require.NoError(t, err)
	assert.Equal(t, "node-a", holder)
}

func TestRedisLocker_EmptyName(t *testing.T) {
	locker := NewRedisLocker(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "node-a")

	_, err := locker.TryLock(context.Background(), "", time.Minute)
	assert.Error(t, err)
}
