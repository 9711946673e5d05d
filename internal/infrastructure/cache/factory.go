package cache

import (
	"fmt"
	"time"

	apptraceability "github.com/vetcrm/backend/internal/application/traceability"
	"github.com/vetcrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ProductCacheFactory creates product-id caches based on configuration
type ProductCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProductCacheFactoryOption is a functional option for configuring the factory
type ProductCacheFactoryOption func(*ProductCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProductCacheFactoryOption {
	return func(f *ProductCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ProductCacheFactoryOption {
	return func(f *ProductCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProductCacheFactory creates a new factory
func NewProductCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...ProductCacheFactoryOption) *ProductCacheFactory {
	f := &ProductCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed product-id cache
func (f *ProductCacheFactory) CreateRedisCache() (*RedisProductCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	c, err := NewRedisProductCache(redisCfg, f.ttl, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis product cache: %w", err)
	}

	return c, nil
}

// CreateInMemoryCache creates an in-memory product-id cache.
// WARNING: in-memory caches do not share state across process instances;
// each instance pays its own warm-up queries in distributed deployments.
func (f *ProductCacheFactory) CreateInMemoryCache() *InMemoryProductCache {
	return NewInMemoryProductCache(f.ttl)
}

// CreateCache creates a product-id cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory when Redis is unreachable
// and fallback is allowed.
func (f *ProductCacheFactory) CreateCache() (apptraceability.ProductIDCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis product-id cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for product cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory product-id cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
