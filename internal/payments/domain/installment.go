package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
	"library-service/pkg/errors"
)

// InstallmentStatus is the lifecycle state of a single InstallmentSchedule entry.
type InstallmentStatus string

const (
	InstallmentUnpaid  InstallmentStatus = "unpaid"
	InstallmentPaid     InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

const (
	MinInstallmentCount = 2
	MaxInstallmentCount = 12
)

// InstallmentSchedule is one dated slice of an invoice's subtotal, with its
// proportional share of tax and service fee.
type InstallmentSchedule struct {
	ID                uuid.UUID
	InvoiceID         uuid.UUID
	TenantID          string
	InstallmentNumber int
	Amount            decimal.Decimal
	TaxAmount         decimal.Decimal
	ServiceFeeAmount  decimal.Decimal
	DueDate           time.Time
	Status            InstallmentStatus
	PaymentURL        *string
	GatewayReference  *string
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsPaid reports whether the installment has been fully settled.
func (s *InstallmentSchedule) IsPaid() bool {
	return s.Status == InstallmentPaid
}

// Required is the amount still owed on this installment: the full amount
// until it is paid.
func (s *InstallmentSchedule) Required() decimal.Decimal {
	if s.IsPaid() {
		return decimal.Zero
	}
	return s.Amount
}

// GenerateScheduleInput carries the inputs to schedule generation (§4.5).
type GenerateScheduleInput struct {
	InvoiceID     uuid.UUID
	TenantID      string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	ServiceFee    decimal.Decimal
	Count         int
	CustomAmounts []decimal.Decimal
	Currency      money.Currency
	StartDate     time.Time
}

// GenerateSchedule builds the installment schedule for a new invoice,
// applying equal or custom distribution of the subtotal and proportional
// distribution of tax and service fee with last-installment rounding
// absorption, per §4.5.
func GenerateSchedule(in GenerateScheduleInput) ([]InstallmentSchedule, error) {
	if in.Count < MinInstallmentCount || in.Count > MaxInstallmentCount {
		return nil, errors.ErrValidation.WithDetails("count", in.Count).
			WithDetails("reason", "installment count must be between 2 and 12")
	}

	amounts, err := resolveBaseAmounts(in.Subtotal, in.Count, in.CustomAmounts, in.Currency)
	if err != nil {
		return nil, err
	}

	schedules := distributeComponents(in.InvoiceID, in.TenantID, amounts, in.TaxTotal, in.ServiceFee, in.Currency, in.StartDate)

	if err := verifyScheduleSums(schedules, in.Subtotal, in.TaxTotal, in.ServiceFee, in.Currency); err != nil {
		return nil, err
	}

	return schedules, nil
}

// resolveBaseAmounts returns the per-installment subtotal amounts, either
// from a caller-supplied custom split or via equal distribution.
func resolveBaseAmounts(subtotal decimal.Decimal, count int, custom []decimal.Decimal, currency money.Currency) ([]decimal.Decimal, error) {
	if custom != nil {
		if len(custom) != count {
			return nil, errors.ErrValidation.WithDetails("reason", "custom_amounts length must equal count")
		}
		sum := decimal.Zero
		for _, a := range custom {
			if !a.IsPositive() {
				return nil, errors.ErrValidation.WithDetails("reason", "custom installment amounts must be positive")
			}
			sum = sum.Add(a)
		}
		if !money.Equal(sum, subtotal, currency) {
			return nil, errors.ErrInstallmentSumMismatch.
				WithDetails("expected", subtotal.String()).
				WithDetails("actual", sum.String())
		}
		return custom, nil
	}

	return equalAmounts(subtotal, count, currency)
}

// equalAmounts splits total into count positive entries, each rounded to
// currency scale, with entry count absorbing the rounding residual.
func equalAmounts(total decimal.Decimal, count int, currency money.Currency) ([]decimal.Decimal, error) {
	base := money.Round(total.Div(decimal.NewFromInt(int64(count))), currency)
	if !base.IsPositive() {
		return nil, errors.ErrValidation.WithDetails("reason", "installment amount must be positive")
	}

	amounts := make([]decimal.Decimal, count)
	running := decimal.Zero
	for i := 0; i < count-1; i++ {
		amounts[i] = base
		running = running.Add(base)
	}
	last := total.Sub(running)
	if !last.IsPositive() {
		return nil, errors.ErrValidation.WithDetails("reason", "last installment amount must be positive")
	}
	amounts[count-1] = last

	return amounts, nil
}

// distributeComponents computes tax and service-fee shares proportional to
// each installment's amount, absorbing rounding residuals into the last
// entry, and assigns monthly due dates starting at startDate.
func distributeComponents(invoiceID uuid.UUID, tenantID string, amounts []decimal.Decimal, taxTotal, serviceFee decimal.Decimal, currency money.Currency, startDate time.Time) []InstallmentSchedule {
	count := len(amounts)
	subtotal := decimal.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a)
	}

	schedules := make([]InstallmentSchedule, count)
	distributedTax := decimal.Zero
	distributedFee := decimal.Zero

	for i := 0; i < count; i++ {
		var taxAmt, feeAmt decimal.Decimal
		if i == count-1 {
			taxAmt = taxTotal.Sub(distributedTax)
			feeAmt = serviceFee.Sub(distributedFee)
		} else {
			proportion := amounts[i].Div(subtotal)
			taxAmt = money.Round(taxTotal.Mul(proportion), currency)
			feeAmt = money.Round(serviceFee.Mul(proportion), currency)
			distributedTax = distributedTax.Add(taxAmt)
			distributedFee = distributedFee.Add(feeAmt)
		}

		schedules[i] = InstallmentSchedule{
			ID:                uuid.New(),
			InvoiceID:         invoiceID,
			TenantID:          tenantID,
			InstallmentNumber: i + 1,
			Amount:            amounts[i],
			TaxAmount:         taxAmt,
			ServiceFeeAmount:  feeAmt,
			DueDate:           addMonths(startDate, i),
			Status:            InstallmentUnpaid,
			CreatedAt:         startDate,
			UpdatedAt:         startDate,
		}
	}

	return schedules
}

// addMonths adds n calendar months to t, matching §4.5's "start_date + (i-1) months".
func addMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// verifyScheduleSums is the §4.5 sanity post-check: component sums must
// exactly equal the invoice totals they were distributed from.
func verifyScheduleSums(schedules []InstallmentSchedule, subtotal, taxTotal, serviceFee decimal.Decimal, currency money.Currency) error {
	sumAmount, sumTax, sumFee := decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range schedules {
		sumAmount = sumAmount.Add(s.Amount)
		sumTax = sumTax.Add(s.TaxAmount)
		sumFee = sumFee.Add(s.ServiceFeeAmount)
	}

	if !money.Equal(sumAmount, subtotal, currency) {
		return errors.ErrInstallmentSumMismatch.WithDetails("component", "amount")
	}
	if !money.Equal(sumTax, taxTotal, currency) {
		return errors.ErrInstallmentSumMismatch.WithDetails("component", "tax_amount")
	}
	if !money.Equal(sumFee, serviceFee, currency) {
		return errors.ErrInstallmentSumMismatch.WithDetails("component", "service_fee_amount")
	}
	return nil
}

// NextPayable returns the smallest-numbered unpaid installment, or nil if
// every installment is already paid. Sequential gating (§4.5 FR-068) only
// allows paying this installment.
func NextPayable(schedules []InstallmentSchedule) *InstallmentSchedule {
	sorted := sortedByNumber(schedules)
	for i := range sorted {
		if !sorted[i].IsPaid() {
			return &sorted[i]
		}
	}
	return nil
}

// ValidateSequentialPayment enforces FR-068: installment n is payable only
// if installments 1..n-1 are all paid.
func ValidateSequentialPayment(schedules []InstallmentSchedule, installmentNumber int) error {
	sorted := sortedByNumber(schedules)
	for _, s := range sorted {
		if s.InstallmentNumber >= installmentNumber {
			break
		}
		if !s.IsPaid() {
			return errors.ErrSequentialPaymentViolation.
				WithDetails("installment_number", installmentNumber).
				WithDetails("blocking_installment", s.InstallmentNumber)
		}
	}
	return nil
}

func sortedByNumber(schedules []InstallmentSchedule) []InstallmentSchedule {
	out := make([]InstallmentSchedule, len(schedules))
	copy(out, schedules)
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out
}

// AdjustmentPair is a single proposed (installment_number, new_amount) edit.
type AdjustmentPair struct {
	InstallmentNumber int
	NewAmount         decimal.Decimal
}

// AdjustSchedule applies §4.5's adjustment operation: it rewrites the
// amounts of still-unpaid installments (conserving their aggregate total)
// and redistributes tax/service-fee proportionally across them using the
// same rounding-absorption rule as generation. Paid installments are never
// touched.
func AdjustSchedule(schedules []InstallmentSchedule, pairs []AdjustmentPair, currency money.Currency) ([]InstallmentSchedule, error) {
	byNumber := make(map[int]*InstallmentSchedule, len(schedules))
	for i := range schedules {
		byNumber[schedules[i].InstallmentNumber] = &schedules[i]
	}

	var unpaidBefore []InstallmentSchedule
	for _, s := range schedules {
		if !s.IsPaid() {
			unpaidBefore = append(unpaidBefore, s)
		}
	}

	remaining := decimal.Zero
	for _, s := range unpaidBefore {
		remaining = remaining.Add(s.Amount)
	}

	proposed := decimal.Zero
	newAmountByNumber := make(map[int]decimal.Decimal, len(pairs))
	for _, p := range pairs {
		s, ok := byNumber[p.InstallmentNumber]
		if !ok {
			return nil, errors.ErrValidation.WithDetails("installment_number", p.InstallmentNumber).
				WithDetails("reason", "unknown installment")
		}
		if s.IsPaid() {
			return nil, errors.ErrInstallmentNotUnpaid.WithDetails("installment_number", p.InstallmentNumber)
		}
		if !p.NewAmount.IsPositive() {
			return nil, errors.ErrValidation.WithDetails("installment_number", p.InstallmentNumber).
				WithDetails("reason", "new amount must be positive")
		}
		newAmountByNumber[p.InstallmentNumber] = p.NewAmount
		proposed = proposed.Add(p.NewAmount)
	}

	if !money.Equal(proposed, remaining, currency) {
		return nil, errors.ErrInstallmentSumMismatch.
			WithDetails("expected_remaining", remaining.String()).
			WithDetails("proposed_total", proposed.String())
	}

	unpaidTaxTotal, unpaidFeeTotal := decimal.Zero, decimal.Zero
	for _, s := range unpaidBefore {
		unpaidTaxTotal = unpaidTaxTotal.Add(s.TaxAmount)
		unpaidFeeTotal = unpaidFeeTotal.Add(s.ServiceFeeAmount)
	}

	// Apply new amounts, preserving installment order for absorption.
	sort.Slice(unpaidBefore, func(i, j int) bool { return unpaidBefore[i].InstallmentNumber < unpaidBefore[j].InstallmentNumber })

	distributedTax, distributedFee := decimal.Zero, decimal.Zero
	for i, s := range unpaidBefore {
		target := byNumber[s.InstallmentNumber]
		target.Amount = newAmountByNumber[s.InstallmentNumber]

		if i == len(unpaidBefore)-1 {
			target.TaxAmount = unpaidTaxTotal.Sub(distributedTax)
			target.ServiceFeeAmount = unpaidFeeTotal.Sub(distributedFee)
			continue
		}

		proportion := target.Amount.Div(proposed)
		target.TaxAmount = money.Round(unpaidTaxTotal.Mul(proportion), currency)
		target.ServiceFeeAmount = money.Round(unpaidFeeTotal.Mul(proportion), currency)
		distributedTax = distributedTax.Add(target.TaxAmount)
		distributedFee = distributedFee.Add(target.ServiceFeeAmount)
	}

	return schedules, nil
}

// ApplyPaymentResult is the outcome of recording a payment against an
// installment, including any unapplied overpayment (§4.5 FR-073..76).
type ApplyPaymentResult struct {
	PaidInstallments []int
	Overpayment      decimal.Decimal
	InvoiceStatus    Status
}

// ApplyInstallmentPayment marks installment n paid and cascades any excess
// payment onto subsequent unpaid installments in order, per §4.5's
// overpayment auto-application rule. It never mutates installments out of
// sequence and never silently discards the final excess.
func ApplyInstallmentPayment(schedules []InstallmentSchedule, installmentNumber int, amountPaid decimal.Decimal, paidAt time.Time) (ApplyPaymentResult, error) {
	if err := ValidateSequentialPayment(schedules, installmentNumber); err != nil {
		return ApplyPaymentResult{}, err
	}

	byNumber := make(map[int]*InstallmentSchedule, len(schedules))
	for i := range schedules {
		byNumber[schedules[i].InstallmentNumber] = &schedules[i]
	}

	target, ok := byNumber[installmentNumber]
	if !ok {
		return ApplyPaymentResult{}, errors.ErrValidation.WithDetails("installment_number", installmentNumber)
	}
	if target.IsPaid() {
		return ApplyPaymentResult{}, errors.ErrInstallmentNotUnpaid.WithDetails("installment_number", installmentNumber)
	}
	if amountPaid.LessThan(target.Required()) {
		return ApplyPaymentResult{}, errors.ErrValidation.
			WithDetails("reason", "amount_paid is less than the required installment amount")
	}

	excess := amountPaid.Sub(target.Required())
	markPaid(target, paidAt)
	result := ApplyPaymentResult{PaidInstallments: []int{installmentNumber}}

	sorted := sortedByNumber(schedules)
	for i := range sorted {
		if sorted[i].InstallmentNumber <= installmentNumber {
			continue
		}
		if excess.IsZero() || excess.IsNegative() {
			break
		}
		next := byNumber[sorted[i].InstallmentNumber]
		if next.IsPaid() {
			continue
		}
		if excess.GreaterThanOrEqual(next.Required()) {
			excess = excess.Sub(next.Required())
			markPaid(next, paidAt)
			result.PaidInstallments = append(result.PaidInstallments, next.InstallmentNumber)
			continue
		}
		break
	}

	result.Overpayment = excess

	allPaid := true
	for _, s := range schedules {
		if !s.IsPaid() {
			allPaid = false
			break
		}
	}
	if allPaid {
		result.InvoiceStatus = StatusPaid
	} else {
		result.InvoiceStatus = StatusPartiallyPaid
	}

	return result, nil
}

func markPaid(s *InstallmentSchedule, at time.Time) {
	s.Status = InstallmentPaid
	s.PaidAt = &at
}

// SweepOverdue transitions unpaid installments whose due date has passed
// into the overdue state (§4.5's overdue sweep).
func SweepOverdue(schedules []InstallmentSchedule, today time.Time) []int {
	var touched []int
	for i := range schedules {
		if schedules[i].Status == InstallmentUnpaid && schedules[i].DueDate.Before(today) {
			schedules[i].Status = InstallmentOverdue
			touched = append(touched, schedules[i].InstallmentNumber)
		}
	}
	return touched
}
