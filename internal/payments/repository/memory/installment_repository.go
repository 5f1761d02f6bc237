package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// InstallmentRepository is an in-memory domain.InstallmentRepository.
type InstallmentRepository struct {
	mu           sync.RWMutex
	byInvoiceID  map[uuid.UUID][]domain.InstallmentSchedule
}

var _ domain.InstallmentRepository = (*InstallmentRepository)(nil)

func NewInstallmentRepository() *InstallmentRepository {
	return &InstallmentRepository{byInvoiceID: make(map[uuid.UUID][]domain.InstallmentSchedule)}
}

func (r *InstallmentRepository) ReplaceSchedule(ctx context.Context, invoiceID uuid.UUID, schedules []domain.InstallmentSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.byInvoiceID[invoiceID]
	byNumber := make(map[int]domain.InstallmentSchedule, len(existing))
	for _, s := range existing {
		byNumber[s.InstallmentNumber] = s
	}
	for _, s := range schedules {
		if prior, ok := byNumber[s.InstallmentNumber]; ok && prior.IsPaid() {
			continue
		}
		byNumber[s.InstallmentNumber] = s
	}

	merged := make([]domain.InstallmentSchedule, 0, len(byNumber))
	for _, s := range byNumber {
		merged = append(merged, s)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].InstallmentNumber < merged[j].InstallmentNumber })
	r.byInvoiceID[invoiceID] = merged
	return nil
}

func (r *InstallmentRepository) ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.InstallmentSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.InstallmentSchedule
	for _, s := range r.byInvoiceID[invoiceID] {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *InstallmentRepository) UpdateOne(ctx context.Context, schedule *domain.InstallmentSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byInvoiceID[schedule.InvoiceID]
	for i := range list {
		if list[i].ID == schedule.ID {
			list[i] = *schedule
			return nil
		}
	}
	return errors.ErrInvoiceNotFound.WithDetails("installment_id", schedule.ID.String())
}

func (r *InstallmentRepository) ListOverdueCandidates(ctx context.Context, before time.Time, batchSize int) ([]domain.InstallmentSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.InstallmentSchedule
	for _, list := range r.byInvoiceID {
		for _, s := range list {
			if s.Status == domain.InstallmentUnpaid && s.DueDate.Before(before) {
				out = append(out, s)
				if len(out) >= batchSize {
					return out, nil
				}
			}
		}
	}
	return out, nil
}
