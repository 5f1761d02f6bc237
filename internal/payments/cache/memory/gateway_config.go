package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"library-service/internal/payments/domain"
)

// GatewayConfigCache is the in-memory counterpart to redis.GatewayConfigCache,
// used for local development and WithMemoryCache wiring.
type GatewayConfigCache struct {
	cache      *gocache.Cache
	repository domain.GatewayConfigRepository
}

func NewGatewayConfigCache(r domain.GatewayConfigRepository) *GatewayConfigCache {
	return &GatewayConfigCache{
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
		repository: r,
	}
}

func (c *GatewayConfigCache) Get(ctx context.Context, gatewayID string) (*domain.GatewayConfig, error) {
	if data, found := c.cache.Get(gatewayID); found {
		return data.(*domain.GatewayConfig), nil
	}

	dest, err := c.repository.Get(ctx, gatewayID)
	if err != nil {
		return nil, err
	}

	c.cache.Set(gatewayID, dest, gocache.DefaultExpiration)
	return dest, nil
}

func (c *GatewayConfigCache) List(ctx context.Context) ([]domain.GatewayConfig, error) {
	return c.repository.List(ctx)
}
