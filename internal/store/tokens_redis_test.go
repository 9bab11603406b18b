package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisRegistry(t *testing.T, ttl time.Duration) *RedisTokenRegistry {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return NewRedisTokenRegistry(client, ttl)
}

func TestRedisTokenRegistry_IssueValidateRevoke(t *testing.T) {
	r := newTestRedisRegistry(t, time.Minute)
	ctx := context.Background()

	token, expiresAt, err := r.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	username, err := r.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NoError(t, r.Revoke(ctx, token))

	_, err = r.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	assert.ErrorIs(t, r.Revoke(ctx, token), ErrTokenNotFound)
}

func TestRedisTokenRegistry_UnknownToken(t *testing.T) {
	r := newTestRedisRegistry(t, time.Minute)

	_, err := r.Validate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
