package memory

import (
	"context"
	"sync"
	"time"

	"library-service/internal/payments/domain"
)

// webhookRetryEntry mirrors one row of webhook_retry_log.
type webhookRetryEntry struct {
	GatewayID             string
	GatewayTransactionRef string
	Attempt               int
	ErrorMessage          string
	NextAttemptAt         *time.Time
	CreatedAt             time.Time
}

// WebhookRetryRepository is an in-memory domain.WebhookRetryRepository.
type WebhookRetryRepository struct {
	mu      sync.Mutex
	entries []webhookRetryEntry
}

var _ domain.WebhookRetryRepository = (*WebhookRetryRepository)(nil)

func NewWebhookRetryRepository() *WebhookRetryRepository {
	return &WebhookRetryRepository{}
}

func (r *WebhookRetryRepository) RecordAttempt(ctx context.Context, gatewayID, gatewayTransactionRef string, attempt int, errMessage string, nextAttemptAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, webhookRetryEntry{
		GatewayID:             gatewayID,
		GatewayTransactionRef: gatewayTransactionRef,
		Attempt:               attempt,
		ErrorMessage:          errMessage,
		NextAttemptAt:         nextAttemptAt,
		CreatedAt:             time.Now().UTC(),
	})
	return nil
}
