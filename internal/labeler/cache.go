package labeler

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/wadmes/VLSI-LLM/config"
)

// Cache is an optional redis-backed completion cache so re-runs do not re-pay
// for labels already produced. A nil *Cache is a no-op.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects to redis when configured, returning nil (cache disabled)
// when cfg.Host is empty.
func NewCache(ctx context.Context, cfg *config.RedisConfig) (*Cache, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

// LabelKey keys one model's prediction for one design.
func LabelKey(model string, rtlID int) string {
	return fmt.Sprintf("label:%s:%d", model, rtlID)
}

// DescKey keys one design's generated description.
func DescKey(rtlID int) string {
	return fmt.Sprintf("desc:%d", rtlID)
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, val string) {
	if c == nil {
		return
	}
	// Completions are content-stable (temperature 0); no expiry.
	c.rdb.Set(ctx, key, val, 0)
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
