// Package cache keeps validated statement results in redis, keyed by the digest of
// the statement text, so re-submitting the same statement skips inference.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

const keyPrefix = "statement:result:"

type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration // default 24h
}

type ResultCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to redis. It returns nil when no address is configured.
func New(cfg Config, logger *slog.Logger) *ResultCache {
	if cfg.Address == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(rdb, cfg.TTL, logger)
}

func NewWithClient(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *ResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{rdb: rdb, ttl: ttl, logger: logger}
}

func key(digest string) string { return keyPrefix + digest }

// Get returns nil, nil on a miss.
func (c *ResultCache) Get(ctx context.Context, digest string) (entity.Statement, error) {
	b, err := c.rdb.Get(ctx, key(digest)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache.miss", "digest", digest)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var res entity.Statement
	if err := json.Unmarshal(b, &res); err != nil || res == nil {
		// drop entries written by an incompatible build
		c.logger.Warn("cache.decode_failed", "digest", digest, "error", err)
		_ = c.rdb.Del(ctx, key(digest)).Err()
		return nil, nil
	}
	return res, nil
}

func (c *ResultCache) Set(ctx context.Context, digest string, res entity.Statement) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.rdb.Set(ctx, key(digest), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ResultCache) Close() error {
	return c.rdb.Close()
}
