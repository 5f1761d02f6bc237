package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemSpec is the caller-supplied shape of one line item on invoice
// creation.
type LineItemSpec struct {
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxCategory *string         `json:"tax_category,omitempty"`
}

// InstallmentConfig is the optional installment request on invoice creation.
type InstallmentConfig struct {
	Count         int               `json:"count" validate:"required,min=2,max=12"`
	CustomAmounts []decimal.Decimal `json:"custom_amounts,omitempty"`
}

// CreateInvoiceRequest is the decoded body of POST /invoices.
type CreateInvoiceRequest struct {
	ExternalID  string              `json:"external_id" validate:"required"`
	Currency    string              `json:"currency" validate:"required,len=3"`
	GatewayID   string              `json:"gateway_id" validate:"required"`
	LineItems   []LineItemSpec      `json:"line_items" validate:"required,min=1,dive"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	Installment *InstallmentConfig  `json:"installment,omitempty"`
}

// AdjustInstallmentsRequest is the decoded body of PATCH
// /invoices/{id}/installments.
type AdjustInstallmentsRequest struct {
	Adjustments []struct {
		InstallmentNumber int             `json:"installment_number"`
		NewAmount         decimal.Decimal `json:"new_amount"`
	} `json:"adjustments" validate:"required,min=1"`
}

// LineItemResponse is the serialized form of a LineItem.
type LineItemResponse struct {
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
	TaxRate     string `json:"tax_rate"`
	TaxCategory *string `json:"tax_category,omitempty"`
	TaxAmount   string `json:"tax_amount"`
}

// InstallmentResponse is the serialized form of an InstallmentSchedule.
type InstallmentResponse struct {
	InstallmentNumber int     `json:"installment_number"`
	Amount            string  `json:"amount"`
	TaxAmount         string  `json:"tax_amount"`
	ServiceFeeAmount  string  `json:"service_fee_amount"`
	DueDate           string  `json:"due_date"`
	Status            string  `json:"status"`
	PaymentURL        *string `json:"payment_url,omitempty"`
	GatewayReference  *string `json:"gateway_reference,omitempty"`
	PaidAt            *string `json:"paid_at,omitempty"`
}

// InvoiceResponse is the serialized form of an Invoice.
type InvoiceResponse struct {
	ID                 string                 `json:"id"`
	ExternalID         string                 `json:"external_id"`
	Currency           string                 `json:"currency"`
	GatewayID          string                 `json:"gateway_id"`
	Subtotal           string                 `json:"subtotal"`
	TaxTotal           string                 `json:"tax_total"`
	ServiceFee         string                 `json:"service_fee"`
	TotalAmount        string                 `json:"total_amount"`
	Status             string                 `json:"status"`
	PaymentInitiatedAt *string                `json:"payment_initiated_at,omitempty"`
	ExpiresAt          string                 `json:"expires_at"`
	CreatedAt          string                 `json:"created_at"`
	UpdatedAt          string                 `json:"updated_at"`
	LineItems          []LineItemResponse     `json:"line_items,omitempty"`
	Installments       []InstallmentResponse  `json:"installments,omitempty"`
}

// ParseFromInvoice converts a domain Invoice into its wire representation.
func ParseFromInvoice(inv *Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID.String(),
		ExternalID:  inv.ExternalID,
		Currency:    string(inv.Currency),
		GatewayID:   inv.GatewayID,
		Subtotal:    inv.Subtotal.String(),
		TaxTotal:    inv.TaxTotal.String(),
		ServiceFee:  inv.ServiceFee.String(),
		TotalAmount: inv.TotalAmount.String(),
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt.Format(time.RFC3339),
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   inv.UpdatedAt.Format(time.RFC3339),
	}

	if inv.PaymentInitiatedAt != nil {
		s := inv.PaymentInitiatedAt.Format(time.RFC3339)
		resp.PaymentInitiatedAt = &s
	}

	for _, li := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ProductName: li.ProductName,
			Quantity:    li.Quantity.String(),
			UnitPrice:   li.UnitPrice.String(),
			Subtotal:    li.Subtotal.String(),
			TaxRate:     li.TaxRate.String(),
			TaxCategory: li.TaxCategory,
			TaxAmount:   li.TaxAmount.String(),
		})
	}

	for _, inst := range inv.Installments {
		resp.Installments = append(resp.Installments, parseFromInstallment(inst))
	}

	return resp
}

func parseFromInstallment(inst InstallmentSchedule) InstallmentResponse {
	out := InstallmentResponse{
		InstallmentNumber: inst.InstallmentNumber,
		Amount:            inst.Amount.String(),
		TaxAmount:         inst.TaxAmount.String(),
		ServiceFeeAmount:  inst.ServiceFeeAmount.String(),
		DueDate:           inst.DueDate.Format(time.RFC3339),
		Status:            string(inst.Status),
		PaymentURL:        inst.PaymentURL,
		GatewayReference:  inst.GatewayReference,
	}
	if inst.PaidAt != nil {
		s := inst.PaidAt.Format(time.RFC3339)
		out.PaidAt = &s
	}
	return out
}

// TransactionResponse is the serialized form of a PaymentTransaction.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	InvoiceID             string  `json:"invoice_id"`
	InstallmentID         *string `json:"installment_id,omitempty"`
	GatewayTransactionRef string  `json:"gateway_transaction_ref"`
	GatewayID             string  `json:"gateway_id"`
	AmountPaid            string  `json:"amount_paid"`
	Currency              string  `json:"currency"`
	PaymentMethod         string  `json:"payment_method"`
	Status                string  `json:"status"`
	OverpaymentAmount     string  `json:"overpayment_amount,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// ParseFromTransaction converts a domain PaymentTransaction into its wire
// representation.
func ParseFromTransaction(t PaymentTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                    t.ID.String(),
		InvoiceID:             t.InvoiceID.String(),
		GatewayTransactionRef: t.GatewayTransactionRef,
		GatewayID:             t.GatewayID,
		AmountPaid:            t.AmountPaid.String(),
		Currency:              string(t.Currency),
		PaymentMethod:         t.PaymentMethod,
		Status:                string(t.Status),
		CreatedAt:             t.CreatedAt.Format(time.RFC3339),
	}
	if t.InstallmentID != nil {
		s := t.InstallmentID.String()
		resp.InstallmentID = &s
	}
	if !t.OverpaymentAmount.IsZero() {
		resp.OverpaymentAmount = t.OverpaymentAmount.String()
	}
	return resp
}

// PaymentStatsResponse answers GET /invoices/{id}/payment-stats.
type PaymentStatsResponse struct {
	TotalAmount     string `json:"total_amount"`
	TotalPaid       string `json:"total_paid"`
	Balance         string `json:"balance"`
	PaidCount       int    `json:"paid_count"`
	UnpaidCount     int    `json:"unpaid_count"`
	OverdueCount    int    `json:"overdue_count"`
	TransactionCount int   `json:"transaction_count"`
}

// newID is a small indirection so use cases that need a fresh identifier
// don't import uuid directly.
func newID() uuid.UUID {
	return uuid.New()
}
