package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisProductCache caches GTIN to product-id mappings in Redis.
// Suitable for distributed deployments where multiple instances share
// the lookup cache. Entries carry a TTL for housekeeping only; the
// mapping itself never changes once a product is created.
type RedisProductCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisProductCache creates a new Redis-backed product-id cache
func NewRedisProductCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProductCache{
		client:    client,
		keyPrefix: "scan:gtin:",
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisProductCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisProductCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = "scan:gtin:"
	}
	return &RedisProductCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Get returns the cached product id for a GTIN. Cache errors are logged
// and reported as misses so the caller falls through to storage.
func (c *RedisProductCache) Get(ctx context.Context, gtin string) (uuid.UUID, bool) {
	val, err := c.client.Get(ctx, c.keyPrefix+gtin).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis GET failed, treating as cache miss",
				zap.String("gtin", gtin),
				zap.Error(err),
			)
		}
		return uuid.Nil, false
	}

	id, err := uuid.Parse(val)
	if err != nil {
		c.logger.Warn("corrupt cache entry, treating as cache miss",
			zap.String("gtin", gtin),
			zap.Error(err),
		)
		return uuid.Nil, false
	}

	return id, true
}

// Set stores the product id for a GTIN. Failures are logged and
// swallowed; the cache is an optimization, not a source of truth.
func (c *RedisProductCache) Set(ctx context.Context, gtin string, id uuid.UUID) {
	if err := c.client.Set(ctx, c.keyPrefix+gtin, id.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("Redis SET failed",
			zap.String("gtin", gtin),
			zap.Error(err),
		)
	}
}

// Close closes the Redis client
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisProductCache) GetClient() *redis.Client {
	return c.client
}
