// Package invoice holds the invoice-lifecycle use cases: creation, payment
// initiation, listing and status queries (§4.4).
package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-service/internal/domain/money"
	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
	"library-service/pkg/logutil"
)

// Validator validates a request DTO using its struct tags.
type Validator interface {
	Validate(i interface{}) error
}

// CreateInvoiceUseCase builds a new invoice aggregate: it validates and
// prices every line item, optionally generates an installment schedule, and
// persists the whole aggregate in one call.
type CreateInvoiceUseCase struct {
	invoices  domain.InvoiceRepository
	gateways  domain.GatewayConfigRepository
	validator Validator
}

func NewCreateInvoiceUseCase(invoices domain.InvoiceRepository, gateways domain.GatewayConfigRepository, validator Validator) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{invoices: invoices, gateways: gateways, validator: validator}
}

func (uc *CreateInvoiceUseCase) Execute(ctx context.Context, tenantID string, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	logger := logutil.UseCaseLogger(ctx, "invoice", "create")

	if err := uc.validator.Validate(req); err != nil {
		return nil, errors.ErrValidation.Wrap(err)
	}

	currency, err := money.Parse(req.Currency)
	if err != nil {
		return nil, err
	}

	gatewayCfg, err := uc.gateways.Get(ctx, req.GatewayID)
	if err != nil {
		return nil, err
	}
	if !gatewayCfg.SupportsCurrency(currency) {
		return nil, errors.ErrGatewayUnsupportedCurrency.
			WithDetails("gateway_id", req.GatewayID).
			WithDetails("currency", req.Currency)
	}

	now := time.Now().UTC()
	invoiceID := uuid.New()

	lineItems := make([]domain.LineItem, 0, len(req.LineItems))
	subtotal, taxTotal := decimal.Zero, decimal.Zero
	for _, spec := range req.LineItems {
		li, err := domain.BuildLineItem(domain.BuildLineItemInput{
			ProductName: spec.ProductName,
			Quantity:    spec.Quantity,
			UnitPrice:   spec.UnitPrice,
			TaxRate:     spec.TaxRate,
			TaxCategory: spec.TaxCategory,
		}, currency)
		if err != nil {
			return nil, err
		}
		li.ID = uuid.New()
		li.InvoiceID = invoiceID
		lineItems = append(lineItems, li)
		subtotal = subtotal.Add(li.Subtotal)
		taxTotal = taxTotal.Add(li.TaxAmount)
	}

	serviceFee := gatewayCfg.ServiceFee(subtotal, currency)
	total := money.Round(subtotal.Add(taxTotal).Add(serviceFee), currency)

	var schedules []domain.InstallmentSchedule
	if req.Installment != nil {
		schedules, err = domain.GenerateSchedule(domain.GenerateScheduleInput{
			InvoiceID:     invoiceID,
			TenantID:      tenantID,
			Subtotal:      subtotal,
			TaxTotal:      taxTotal,
			ServiceFee:    serviceFee,
			Count:         req.Installment.Count,
			CustomAmounts: req.Installment.CustomAmounts,
			Currency:      currency,
			StartDate:     now,
		})
		if err != nil {
			return nil, err
		}
	}

	expiresAt := now.Add(domain.DefaultInvoiceExpiryHours * time.Hour)
	if req.ExpiresAt != nil {
		var lastDue *time.Time
		if len(schedules) > 0 {
			lastDue = &schedules[len(schedules)-1].DueDate
		}
		if err := domain.ValidateExpiresAt(*req.ExpiresAt, now, lastDue); err != nil {
			return nil, err
		}
		expiresAt = *req.ExpiresAt
	}

	inv := &domain.Invoice{
		ID:           invoiceID,
		TenantID:     tenantID,
		ExternalID:   req.ExternalID,
		Currency:     currency,
		GatewayID:    req.GatewayID,
		Subtotal:     subtotal,
		TaxTotal:     taxTotal,
		ServiceFee:   serviceFee,
		TotalAmount:  total,
		Status:       domain.StatusDraft,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
		LineItems:    lineItems,
		Installments: schedules,
	}

	if err := inv.ValidateTotals(); err != nil {
		return nil, err
	}

	if err := uc.invoices.Create(ctx, inv); err != nil {
		logger.Error("failed to persist invoice", zap.Error(err))
		return nil, err
	}

	logger.Info("invoice created", zap.String("invoice_id", invoiceID.String()), zap.String("external_id", req.ExternalID))
	return inv, nil
}
