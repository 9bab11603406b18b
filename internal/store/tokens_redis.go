package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/config"
)

const tokenKeyPrefix = "token:"

// RedisTokenRegistry keeps tokens in Redis with the TTL applied at the
// key level, so expiry eviction is handled by Redis itself. Because
// expired keys simply disappear, Validate cannot distinguish an expired
// token from an unknown one and reports both as ErrTokenNotFound.
type RedisTokenRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenRegistry creates a Redis-backed registry
func NewRedisTokenRegistry(client *redis.Client, ttl time.Duration) *RedisTokenRegistry {
	return &RedisTokenRegistry{
		client: client,
		ttl:    ttl,
	}
}

// Issue creates a crypto-random opaque token for username
func (r *RedisTokenRegistry) Issue(ctx context.Context, username string) (string, time.Time, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(r.ttl).UTC()

	if err := r.client.Set(ctx, tokenKeyPrefix+token, username, r.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate resolves a token to its username
func (r *RedisTokenRegistry) Validate(ctx context.Context, token string) (string, error) {
	username, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up token: %w", err)
	}
	return username, nil
}

// Revoke deletes a token
func (r *RedisTokenRegistry) Revoke(ctx context.Context, token string) error {
	deleted, err := r.client.Del(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if deleted == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// NewRedisClient creates a Redis client from config and verifies connectivity
func NewRedisClient(cfg *config.RedisConfig, logger *logrus.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	logger.WithField("address", cfg.Address).Info("Redis client initialized")
	return rdb, nil
}
