package app

import (
	infrastore "library-service/internal/infrastructure/store"
	paymentmemorycache "library-service/internal/payments/cache/memory"
	paymentrediscache "library-service/internal/payments/cache/redis"
	paymentdomain "library-service/internal/payments/domain"
)

// Dependencies holds cache dependencies
type Dependencies struct {
	Repositories *Repositories
}

// CacheConfig function type for cache setup
type CacheConfig func(*Caches) error

// Caches holds all cache implementations
type Caches struct {
	dependencies Dependencies
	redis        infrastore.Redis

	GatewayConfig paymentdomain.GatewayConfigRepository
}

// NewCaches creates a new cache container
func NewCaches(deps Dependencies, configs ...CacheConfig) (*Caches, error) {
	caches := &Caches{
		dependencies: deps,
	}

	for _, cfg := range configs {
		if err := cfg(caches); err != nil {
			return nil, err
		}
	}

	return caches, nil
}

// Close closes all cache connections
func (c *Caches) Close() {
	if c.redis.Connection != nil {
		c.redis.Connection.Close()
	}
}

// WithMemoryCache configures in-memory caches
func WithMemoryCache() CacheConfig {
	return func(c *Caches) error {
		c.GatewayConfig = paymentmemorycache.NewGatewayConfigCache(c.dependencies.Repositories.GatewayConfig)
		return nil
	}
}

// WithRedisCache configures Redis caches
func WithRedisCache(url string) CacheConfig {
	return func(c *Caches) error {
		rdb, err := infrastore.NewRedis(url)
		if err != nil {
			return err
		}
		c.redis = rdb

		c.GatewayConfig = paymentrediscache.NewGatewayConfigCache(rdb.Connection, c.dependencies.Repositories.GatewayConfig)

		return nil
	}
}
