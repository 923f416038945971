package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "referral_link:"

// RedisLinkCache caches referral links by user id.
type RedisLinkCache struct {
	client *redis.Client
}

func NewRedisLinkCache(addr, password string, db int) *RedisLinkCache {
	return &RedisLinkCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisLinkCache) Get(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	payload, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var link domain.ReferralLink
	if err := json.Unmarshal(payload, &link); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &link, nil
}

func (c *RedisLinkCache) Set(ctx context.Context, link *domain.ReferralLink, ttl time.Duration) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+link.UserID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Ping satisfies health.Pinger.
func (c *RedisLinkCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisLinkCache) Close() error {
	return c.client.Close()
}
