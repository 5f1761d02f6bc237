package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/internal/payments/gateway"
	"library-service/pkg/logutil"
)

// InitiatePaymentUseCase transitions a draft invoice to pending and asks the
// configured gateway to open a remote payment session.
type InitiatePaymentUseCase struct {
	invoices     domain.InvoiceRepository
	installments domain.InstallmentRepository
	gateways     domain.GatewayConfigRepository
	registry     *gateway.Registry
}

func NewInitiatePaymentUseCase(invoices domain.InvoiceRepository, installments domain.InstallmentRepository, gateways domain.GatewayConfigRepository, registry *gateway.Registry) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{invoices: invoices, installments: installments, gateways: gateways, registry: registry}
}

// InitiatePaymentResult carries the invoice plus the remote payment URL(s)
// created for it, one per installment when the invoice is on a schedule.
type InitiatePaymentResult struct {
	Invoice      *domain.Invoice
	PaymentURLs  map[int]string
}

func (uc *InitiatePaymentUseCase) Execute(ctx context.Context, tenantID string, invoiceID uuid.UUID) (*InitiatePaymentResult, error) {
	logger := logutil.UseCaseLogger(ctx, "invoice", "initiate_payment")

	inv, err := uc.invoices.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	gw, err := uc.registry.Resolve(inv.GatewayID, inv.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &InitiatePaymentResult{Invoice: inv, PaymentURLs: make(map[int]string)}

	if len(inv.Installments) == 0 {
		resp, err := gw.CreatePayment(ctx, gateway.PaymentRequest{
			ExternalID:  inv.ExternalID,
			Amount:      inv.TotalAmount,
			Currency:    inv.Currency,
			Description: "Invoice " + inv.ExternalID,
		})
		if err != nil {
			logger.Error("gateway create_payment failed", zap.Error(err))
			return nil, err
		}
		result.PaymentURLs[0] = resp.PaymentURL
	} else {
		for i := range inv.Installments {
			inst := &inv.Installments[i]
			if inst.IsPaid() {
				continue
			}
			externalID := gateway.BuildInstallmentExternalID(inv.ExternalID, inst.InstallmentNumber)
			resp, err := gw.CreatePayment(ctx, gateway.PaymentRequest{
				ExternalID:  externalID,
				Amount:      inst.Amount.Add(inst.TaxAmount).Add(inst.ServiceFeeAmount),
				Currency:    inv.Currency,
				Description: "Invoice " + inv.ExternalID,
				InstallmentInfo: &gateway.InstallmentInfo{
					InstallmentNumber: inst.InstallmentNumber,
					TotalInstallments: len(inv.Installments),
				},
			})
			if err != nil {
				logger.Error("gateway create_payment failed for installment",
					zap.Int("installment_number", inst.InstallmentNumber), zap.Error(err))
				return nil, err
			}
			inst.PaymentURL = &resp.PaymentURL
			result.PaymentURLs[inst.InstallmentNumber] = resp.PaymentURL

			if err := uc.installments.UpdateOne(ctx, inst); err != nil {
				return nil, err
			}
		}
	}

	if err := inv.InitiatePayment(now); err != nil {
		return nil, err
	}
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info("payment initiated", zap.String("invoice_id", invoiceID.String()))
	return result, nil
}
