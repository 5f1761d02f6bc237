package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
)

// APIKeyRepository is an in-memory domain.APIKeyRepository, seeded directly
// by tests and local-dev bootstrap. It stores no key prefix:
// FindActiveByHashCandidate ignores the lookup hint and returns every
// active key, leaving the bcrypt comparison to pick the match.
type APIKeyRepository struct {
	mu   sync.RWMutex
	keys map[string]domain.APIKey
}

var _ domain.APIKeyRepository = (*APIKeyRepository)(nil)

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{keys: make(map[string]domain.APIKey)}
}

// Seed inserts an API key directly, for local-dev bootstrap and tests.
func (r *APIKeyRepository) Seed(key domain.APIKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key.ID] = key
}

func (r *APIKeyRepository) FindActiveByHashCandidate(ctx context.Context, lookupHint string) ([]domain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.APIKey
	for _, k := range r.keys {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[keyID]
	if !ok {
		return nil
	}
	k.LastUsedAt = &at
	r.keys[keyID] = k
	return nil
}

func (r *APIKeyRepository) RecordAudit(ctx context.Context, entry domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return nil
}
