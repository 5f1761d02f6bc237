package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// WarmingConfig configures cache warming behavior
type WarmingConfig struct {
	// Enabled controls whether cache warming runs
	Enabled bool

	// Timeout is the maximum time to spend warming caches
	Timeout time.Duration

	// Logger for warming progress
	Logger *zap.Logger
}

// DefaultWarmingConfig returns sensible defaults
func DefaultWarmingConfig(logger *zap.Logger) WarmingConfig {
	return WarmingConfig{
		Enabled: true,
		Timeout: 30 * time.Second,
		Logger:  logger,
	}
}

// WarmCaches pre-loads every active gateway configuration into the cache.
//
// Gateway configs are read on every invoice create and initiate-payment
// call but change rarely, making them the one hot lookup worth warming at
// startup rather than paying the cache-miss penalty on the first request
// per gateway.
func WarmCaches(ctx context.Context, caches *Caches, config WarmingConfig) error {
	if !config.Enabled {
		config.Logger.Info("cache warming disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	startTime := time.Now()
	config.Logger.Info("starting cache warming", zap.Duration("timeout", config.Timeout))

	warmed, err := warmGatewayConfigCache(ctx, caches, config)
	duration := time.Since(startTime)

	if err != nil {
		config.Logger.Warn("gateway config cache warming incomplete", zap.Error(err))
		return fmt.Errorf("cache warming failed: %w", err)
	}

	config.Logger.Info("cache warming completed",
		zap.Int("gateways_warmed", warmed),
		zap.Duration("duration", duration),
	)
	return nil
}

func warmGatewayConfigCache(ctx context.Context, caches *Caches, config WarmingConfig) (int, error) {
	repo := caches.dependencies.Repositories.GatewayConfig
	configs, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list gateway configs: %w", err)
	}

	warmed := 0
	for _, gc := range configs {
		if ctx.Err() != nil {
			return warmed, fmt.Errorf("timeout warming gateway configs: %w", ctx.Err())
		}
		if _, err := caches.GatewayConfig.Get(ctx, gc.GatewayID); err != nil {
			config.Logger.Debug("failed to warm gateway config cache",
				zap.String("gateway_id", gc.GatewayID),
				zap.Error(err),
			)
			continue
		}
		warmed++
	}

	return warmed, nil
}

// WarmCachesAsync runs cache warming in the background without blocking startup.
func WarmCachesAsync(ctx context.Context, caches *Caches, config WarmingConfig) {
	go func() {
		if err := WarmCaches(ctx, caches, config); err != nil {
			config.Logger.Error("async cache warming failed", zap.Error(err))
		}
	}()
}
