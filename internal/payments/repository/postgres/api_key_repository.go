package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/payments/domain"
)

// APIKeyRepository implements domain.APIKeyRepository against pgxpool.
//
// FindActiveByHashCandidate returns every active key sharing the caller's
// lookup hint (the key's stable, non-secret prefix) rather than a single
// row, because the actual secret comparison happens bcrypt-side in the auth
// middleware, not in SQL (§4.10).
type APIKeyRepository struct {
	db *pgxpool.Pool
}

var _ domain.APIKeyRepository = (*APIKeyRepository)(nil)

func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) FindActiveByHashCandidate(ctx context.Context, lookupHint string) ([]domain.APIKey, error) {
	const query = `
		SELECT id, tenant_id, api_key_hash, rate_limit, is_active, last_used_at, created_at
		FROM api_keys
		WHERE key_prefix = $1 AND is_active = TRUE
	`
	rows, err := r.db.Query(ctx, query, lookupHint)
	if err != nil {
		return nil, fmt.Errorf("find api keys by prefix: %w", err)
	}
	defer rows.Close()

	var out []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.APIKeyHash, &k.RateLimit, &k.IsActive, &k.LastUsedAt, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	const query = `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, keyID, at)
	if err != nil {
		return fmt.Errorf("touch api key last_used_at: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) RecordAudit(ctx context.Context, entry domain.AuditEntry) error {
	const query = `
		INSERT INTO api_key_audit_log (id, key_prefix, tenant_id, success, remote_addr, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, query, id, entry.KeyPrefix, entry.TenantID, entry.Success, entry.RemoteAddr, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("record api key audit entry: %w", err)
	}
	return nil
}
