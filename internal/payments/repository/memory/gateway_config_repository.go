package memory

import (
	"context"
	"sync"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// GatewayConfigRepository is an in-memory domain.GatewayConfigRepository,
// typically seeded once in test setup via Put.
type GatewayConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]domain.GatewayConfig
}

var _ domain.GatewayConfigRepository = (*GatewayConfigRepository)(nil)

func NewGatewayConfigRepository() *GatewayConfigRepository {
	return &GatewayConfigRepository{configs: make(map[string]domain.GatewayConfig)}
}

func (r *GatewayConfigRepository) Put(cfg domain.GatewayConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.GatewayID] = cfg
}

func (r *GatewayConfigRepository) Get(ctx context.Context, gatewayID string) (*domain.GatewayConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[gatewayID]
	if !ok {
		return nil, errors.ErrUnknownGateway.WithDetails("gateway_id", gatewayID)
	}
	copied := cfg
	return &copied, nil
}

func (r *GatewayConfigRepository) List(ctx context.Context) ([]domain.GatewayConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.GatewayConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		if cfg.IsActive {
			out = append(out, cfg)
		}
	}
	return out, nil
}
