package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// RedisReceiptCache keeps settled payments keyed by proof digest so a proof
// resubmitted after a lost response returns the recorded result instead of
// being settled a second time. A short-lived SetNX lock serializes
// concurrent submissions of the same proof.
type RedisReceiptCache struct {
	client *redis.Client
}

func NewRedisReceiptCache(client *redis.Client) *RedisReceiptCache {
	return &RedisReceiptCache{client: client}
}

func resultKey(digest string) string { return fmt.Sprintf("x402:receipt:%s", digest) }
func lockKey(digest string) string   { return fmt.Sprintf("x402:settle_lock:%s", digest) }

func (c *RedisReceiptCache) GetResult(ctx context.Context, digest string) (*x402.SettlementResult, error) {
	data, err := c.client.Get(ctx, resultKey(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result x402.SettlementResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisReceiptCache) PutResult(ctx context.Context, digest string, result *x402.SettlementResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(digest), data, ttl).Err()
}

func (c *RedisReceiptCache) AcquireLock(ctx context.Context, digest string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, lockKey(digest), "1", ttl).Result()
}

func (c *RedisReceiptCache) ReleaseLock(ctx context.Context, digest string) error {
	return c.client.Del(ctx, lockKey(digest)).Err()
}
