package middleware

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

type contextKey string

const (
	contextKeyTenantID   contextKey = "tenant_id"
	contextKeyRateLimit  contextKey = "rate_limit"
)

// TenantIDFromContext returns the tenant ID attached by AuthMiddleware.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(contextKeyTenantID).(string)
	return tenantID, ok
}

// RateLimitFromContext returns the requesting key's configured requests-
// per-minute budget, attached by AuthMiddleware.
func RateLimitFromContext(ctx context.Context) (int, bool) {
	limit, ok := ctx.Value(contextKeyRateLimit).(int)
	return limit, ok
}

// AuthMiddleware verifies the X-API-Key header against stored bcrypt
// hashes and attaches the resolved tenant_id to the request context (§4.10).
// Keys are looked up by a non-secret prefix (key_prefix) so the repository
// never has to scan every row; the prefix only narrows candidates, the
// actual comparison is always the constant-time bcrypt check below.
type AuthMiddleware struct {
	apiKeys domain.APIKeyRepository
}

func NewAuthMiddleware(apiKeys domain.APIKeyRepository) *AuthMiddleware {
	return &AuthMiddleware{apiKeys: apiKeys}
}

const apiKeyPrefixLength = 8

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := r.Header.Get("X-API-Key")
		if rawKey == "" {
			RespondError(w, errors.ErrUnauthorized.WithDetails("reason", "missing X-API-Key header"))
			return
		}

		prefix := rawKey
		if len(prefix) > apiKeyPrefixLength {
			prefix = prefix[:apiKeyPrefixLength]
		}

		candidates, err := m.apiKeys.FindActiveByHashCandidate(r.Context(), prefix)
		if err != nil {
			RespondError(w, errors.ErrInternal.Wrap(err))
			return
		}

		var matched *domain.APIKey
		for i := range candidates {
			if bcrypt.CompareHashAndPassword([]byte(candidates[i].APIKeyHash), []byte(rawKey)) == nil {
				matched = &candidates[i]
				break
			}
		}

		m.audit(r, prefix, matched)

		if matched == nil || !matched.IsActive {
			RespondError(w, errors.ErrUnauthorized.WithDetails("reason", "invalid or inactive API key"))
			return
		}

		go m.touchLastUsed(matched.ID)

		ctx := context.WithValue(r.Context(), contextKeyTenantID, matched.TenantID)
		ctx = context.WithValue(ctx, contextKeyRateLimit, matched.RateLimit)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) audit(r *http.Request, prefix string, matched *domain.APIKey) {
	entry := domain.AuditEntry{
		KeyPrefix:  prefix,
		Success:    matched != nil,
		RemoteAddr: r.RemoteAddr,
		OccurredAt: time.Now().UTC(),
	}
	if matched != nil {
		entry.TenantID = matched.TenantID
	}
	_ = m.apiKeys.RecordAudit(context.Background(), entry)
}

func (m *AuthMiddleware) touchLastUsed(keyID string) {
	_ = m.apiKeys.TouchLastUsed(context.Background(), keyID, time.Now().UTC())
}
