package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-service/internal/payments/domain"
	"library-service/internal/payments/repository/memory"
)

func seedAPIKey(t *testing.T, repo *memory.APIKeyRepository, rawKey, tenantID string, rateLimit int, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	repo.Seed(domain.APIKey{
		ID:         rawKey,
		TenantID:   tenantID,
		APIKeyHash: string(hash),
		RateLimit:  rateLimit,
		IsActive:   active,
		CreatedAt:  time.Now(),
	})
}

func TestAuthMiddlewareAcceptsValidKey(t *testing.T) {
	repo := memory.NewAPIKeyRepository()
	seedAPIKey(t, repo, "sk_live_abc123", "tenant-a", 100, true)

	var gotTenant string
	var gotLimit int
	handler := NewAuthMiddleware(repo).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant, _ = TenantIDFromContext(r.Context())
		gotLimit, _ = RateLimitFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "sk_live_abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-a", gotTenant)
	assert.Equal(t, 100, gotLimit)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	repo := memory.NewAPIKeyRepository()
	handler := NewAuthMiddleware(repo).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsWrongKey(t *testing.T) {
	repo := memory.NewAPIKeyRepository()
	seedAPIKey(t, repo, "sk_live_abc123", "tenant-a", 100, true)

	handler := NewAuthMiddleware(repo).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a wrong key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "sk_live_wrongkey")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsInactiveKey(t *testing.T) {
	repo := memory.NewAPIKeyRepository()
	seedAPIKey(t, repo, "sk_live_abc123", "tenant-a", 100, false)

	handler := NewAuthMiddleware(repo).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an inactive key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "sk_live_abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
