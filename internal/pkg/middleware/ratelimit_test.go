package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withTenant(r *http.Request, tenantID string, rateLimit int) *http.Request {
	ctx := context.WithValue(r.Context(), contextKeyTenantID, tenantID)
	ctx = context.WithValue(ctx, contextKeyRateLimit, rateLimit)
	return r.WithContext(ctx)
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewRateLimiter(60)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := withTenant(httptest.NewRequest(http.MethodGet, "/", nil), "tenant-a", 120)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterRejectsOverBudget(t *testing.T) {
	rl := NewRateLimiter(60)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// A 1-request/minute budget with burst 1: the second immediate request
	// from the same tenant must be rejected.
	first := withTenant(httptest.NewRequest(http.MethodGet, "/", nil), "tenant-a", 1)
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)
	assert.Equal(t, http.StatusOK, w1.Code)

	second := withTenant(httptest.NewRequest(http.MethodGet, "/", nil), "tenant-a", 1)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
}

func TestRateLimiterTracksTenantsIndependently(t *testing.T) {
	rl := NewRateLimiter(60)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	a1 := withTenant(httptest.NewRequest(http.MethodGet, "/", nil), "tenant-a", 1)
	wA1 := httptest.NewRecorder()
	handler.ServeHTTP(wA1, a1)
	assert.Equal(t, http.StatusOK, wA1.Code)

	// tenant-a has now exhausted its single-request burst, but tenant-b's
	// bucket must be untouched.
	b1 := withTenant(httptest.NewRequest(http.MethodGet, "/", nil), "tenant-b", 1)
	wB1 := httptest.NewRecorder()
	handler.ServeHTTP(wB1, b1)
	assert.Equal(t, http.StatusOK, wB1.Code)
}
