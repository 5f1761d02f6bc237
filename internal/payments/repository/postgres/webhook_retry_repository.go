package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/payments/domain"
)

// WebhookRetryRepository implements domain.WebhookRetryRepository against
// pgxpool, recording one audit row per retry attempt (§6 webhook_retry_log).
type WebhookRetryRepository struct {
	db *pgxpool.Pool
}

var _ domain.WebhookRetryRepository = (*WebhookRetryRepository)(nil)

func NewWebhookRetryRepository(db *pgxpool.Pool) *WebhookRetryRepository {
	return &WebhookRetryRepository{db: db}
}

func (r *WebhookRetryRepository) RecordAttempt(ctx context.Context, gatewayID, gatewayTransactionRef string, attempt int, errMessage string, nextAttemptAt *time.Time) error {
	const query = `
		INSERT INTO webhook_retry_log (
			id, gateway_id, gateway_transaction_ref, attempt, error_message,
			next_attempt_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.db.Exec(ctx, query,
		uuid.NewString(), gatewayID, gatewayTransactionRef, attempt, errMessage,
		nextAttemptAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record webhook retry attempt: %w", err)
	}
	return nil
}
