package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/internal/payments/domain"
)

func newInvoice(tenantID, externalID string, createdAt time.Time) *domain.Invoice {
	return &domain.Invoice{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Status:     domain.StatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestInvoiceRepositoryCreateRejectsDuplicateExternalIDWithinTenant(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newInvoice("tenant-a", "ext-1", time.Now())))
	err := repo.Create(ctx, newInvoice("tenant-a", "ext-1", time.Now()))
	assert.Error(t, err)
}

func TestInvoiceRepositoryAllowsSameExternalIDAcrossTenants(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newInvoice("tenant-a", "ext-1", time.Now())))
	assert.NoError(t, repo.Create(ctx, newInvoice("tenant-b", "ext-1", time.Now())))
}

func TestInvoiceRepositoryGetEnforcesTenantIsolation(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	inv := newInvoice("tenant-a", "ext-1", time.Now())
	require.NoError(t, repo.Create(ctx, inv))

	_, err := repo.Get(ctx, "tenant-b", inv.ID)
	assert.Error(t, err, "a different tenant must not be able to read tenant-a's invoice")

	got, err := repo.Get(ctx, "tenant-a", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestInvoiceRepositoryGetByExternalIDAnyTenantIgnoresTenant(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	inv := newInvoice("tenant-a", "ext-1", time.Now())
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByExternalIDAnyTenant(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got.TenantID)
}

func TestInvoiceRepositoryListPaginatesNewestFirst(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newInvoice("tenant-a", uuid.NewString(), base.Add(time.Duration(i)*time.Minute))))
	}

	page, total, err := repo.List(ctx, "tenant-a", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt), "newest invoice must come first")

	page2, _, err := repo.List(ctx, "tenant-a", 2, 4)
	require.NoError(t, err)
	assert.Len(t, page2, 1, "offset past the last full page returns the remainder")
}

func TestInvoiceRepositoryUpdateRejectsCrossTenant(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	inv := newInvoice("tenant-a", "ext-1", time.Now())
	require.NoError(t, repo.Create(ctx, inv))

	mutated := *inv
	mutated.TenantID = "tenant-b"
	err := repo.Update(ctx, &mutated)
	assert.Error(t, err)
}

func TestInvoiceRepositoryListExpiring(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()
	now := time.Now()

	expired := newInvoice("tenant-a", "ext-1", now)
	expired.ExpiresAt = now.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, expired))

	notYet := newInvoice("tenant-a", "ext-2", now)
	notYet.ExpiresAt = now.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, notYet))

	alreadyPaid := newInvoice("tenant-a", "ext-3", now)
	alreadyPaid.Status = domain.StatusPaid
	alreadyPaid.ExpiresAt = now.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, alreadyPaid))

	out, err := repo.ListExpiring(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ext-1", out[0].ExternalID)
}
