package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// GatewayConfigRepository implements domain.GatewayConfigRepository against
// pgxpool.
type GatewayConfigRepository struct {
	db *pgxpool.Pool
}

var _ domain.GatewayConfigRepository = (*GatewayConfigRepository)(nil)

func NewGatewayConfigRepository(db *pgxpool.Pool) *GatewayConfigRepository {
	return &GatewayConfigRepository{db: db}
}

func (r *GatewayConfigRepository) Get(ctx context.Context, gatewayID string) (*domain.GatewayConfig, error) {
	const query = `
		SELECT gateway_id, name, supported_currencies, fee_percentage, fee_fixed,
		       webhook_secret, base_url, environment, is_active
		FROM payment_gateway_configs
		WHERE gateway_id = $1
	`
	cfg, err := scanGatewayConfig(r.db.QueryRow(ctx, query, gatewayID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUnknownGateway.WithDetails("gateway_id", gatewayID)
		}
		return nil, fmt.Errorf("get gateway config: %w", err)
	}
	return cfg, nil
}

func (r *GatewayConfigRepository) List(ctx context.Context) ([]domain.GatewayConfig, error) {
	const query = `
		SELECT gateway_id, name, supported_currencies, fee_percentage, fee_fixed,
		       webhook_secret, base_url, environment, is_active
		FROM payment_gateway_configs
		WHERE is_active = TRUE
		ORDER BY gateway_id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gateway configs: %w", err)
	}
	defer rows.Close()

	var out []domain.GatewayConfig
	for rows.Next() {
		cfg, err := scanGatewayConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gateway config: %w", err)
		}
		out = append(out, *cfg)
	}
	return out, rows.Err()
}

func scanGatewayConfig(row rowScanner) (*domain.GatewayConfig, error) {
	var (
		cfg         domain.GatewayConfig
		currencies  string
		feePct, fee decimal.Decimal
	)

	err := row.Scan(
		&cfg.GatewayID, &cfg.Name, &currencies, &feePct, &fee,
		&cfg.WebhookSecret, &cfg.BaseURL, &cfg.Environment, &cfg.IsActive,
	)
	if err != nil {
		return nil, err
	}

	cfg.FeePercentage = feePct
	cfg.FeeFixed = fee
	for _, code := range strings.Split(currencies, ",") {
		c, err := money.Parse(code)
		if err != nil {
			continue
		}
		cfg.SupportedCurrencies = append(cfg.SupportedCurrencies, c)
	}
	return &cfg, nil
}
