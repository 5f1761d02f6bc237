package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"library-service/internal/payments/domain"
)

const gatewayConfigTTL = 5 * time.Minute

// GatewayConfigCache wraps a GatewayConfigRepository with a read-through
// Redis cache. A gateway config is read on every invoice create and rarely
// written, so it is the one payment lookup worth the extra hop.
type GatewayConfigCache struct {
	cache      *redis.Client
	repository domain.GatewayConfigRepository
}

func NewGatewayConfigCache(c *redis.Client, r domain.GatewayConfigRepository) *GatewayConfigCache {
	return &GatewayConfigCache{cache: c, repository: r}
}

func (c *GatewayConfigCache) Get(ctx context.Context, gatewayID string) (*domain.GatewayConfig, error) {
	key := "gateway_config:" + gatewayID

	data, err := c.cache.Get(ctx, key).Result()
	if err == nil {
		var dest domain.GatewayConfig
		if err := json.Unmarshal([]byte(data), &dest); err != nil {
			return nil, err
		}
		return &dest, nil
	}

	dest, err := c.repository.Get(ctx, gatewayID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return dest, err
	}
	if err := c.cache.Set(ctx, key, payload, gatewayConfigTTL).Err(); err != nil {
		return dest, err
	}

	return dest, nil
}

func (c *GatewayConfigCache) List(ctx context.Context) ([]domain.GatewayConfig, error) {
	return c.repository.List(ctx)
}
