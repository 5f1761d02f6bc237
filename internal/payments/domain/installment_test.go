package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/internal/domain/money"
)

func TestGenerateScheduleEqualDistribution(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	schedules, err := GenerateSchedule(GenerateScheduleInput{
		InvoiceID:  uuid.New(),
		TenantID:   "tenant-a",
		Subtotal:   decimal.NewFromInt(100),
		TaxTotal:   decimal.NewFromFloat(11),
		ServiceFee: decimal.NewFromFloat(3),
		Count:      3,
		Currency:   money.USD,
		StartDate:  start,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 3)

	sumAmount, sumTax, sumFee := decimal.Zero, decimal.Zero, decimal.Zero
	for i, s := range schedules {
		assert.Equal(t, i+1, s.InstallmentNumber)
		assert.Equal(t, InstallmentUnpaid, s.Status)
		sumAmount = sumAmount.Add(s.Amount)
		sumTax = sumTax.Add(s.TaxAmount)
		sumFee = sumFee.Add(s.ServiceFeeAmount)
	}
	assert.True(t, sumAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, sumTax.Equal(decimal.NewFromFloat(11)))
	assert.True(t, sumFee.Equal(decimal.NewFromFloat(3)))

	assert.Equal(t, start, schedules[0].DueDate)
	assert.Equal(t, start.AddDate(0, 1, 0), schedules[1].DueDate)
	assert.Equal(t, start.AddDate(0, 2, 0), schedules[2].DueDate)
}

func TestGenerateScheduleRejectsOutOfRangeCount(t *testing.T) {
	_, err := GenerateSchedule(GenerateScheduleInput{
		Subtotal: decimal.NewFromInt(100),
		Count:    1,
		Currency: money.USD,
	})
	assert.Error(t, err)

	_, err = GenerateSchedule(GenerateScheduleInput{
		Subtotal: decimal.NewFromInt(100),
		Count:    13,
		Currency: money.USD,
	})
	assert.Error(t, err)
}

func TestGenerateScheduleCustomAmountsMustSumToSubtotal(t *testing.T) {
	_, err := GenerateSchedule(GenerateScheduleInput{
		Subtotal: decimal.NewFromInt(100),
		Count:    2,
		CustomAmounts: []decimal.Decimal{
			decimal.NewFromInt(40),
			decimal.NewFromInt(40),
		},
		Currency: money.USD,
	})
	assert.Error(t, err)
}

func TestValidateSequentialPayment(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Status: InstallmentPaid},
		{InstallmentNumber: 2, Status: InstallmentUnpaid},
		{InstallmentNumber: 3, Status: InstallmentUnpaid},
	}

	assert.NoError(t, ValidateSequentialPayment(schedules, 2))
	assert.Error(t, ValidateSequentialPayment(schedules, 3), "installment 2 is still unpaid")
}

func TestApplyInstallmentPaymentExactAmount(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
		{InstallmentNumber: 2, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
	}

	result, err := ApplyInstallmentPayment(schedules, 1, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.PaidInstallments)
	assert.True(t, result.Overpayment.IsZero())
	assert.Equal(t, StatusPartiallyPaid, result.InvoiceStatus)
	assert.True(t, schedules[0].IsPaid())
	assert.False(t, schedules[1].IsPaid())
}

func TestApplyInstallmentPaymentOverpaymentCascades(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
		{InstallmentNumber: 2, Amount: decimal.NewFromInt(30), Status: InstallmentUnpaid},
		{InstallmentNumber: 3, Amount: decimal.NewFromInt(20), Status: InstallmentUnpaid},
	}

	result, err := ApplyInstallmentPayment(schedules, 1, decimal.NewFromInt(90), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, result.PaidInstallments)
	assert.True(t, result.Overpayment.Equal(decimal.NewFromInt(10)), "excess after installment 2 should not silently cover installment 3")
	assert.True(t, schedules[0].IsPaid())
	assert.True(t, schedules[1].IsPaid())
	assert.False(t, schedules[2].IsPaid())
	assert.Equal(t, StatusPartiallyPaid, result.InvoiceStatus)
}

func TestApplyInstallmentPaymentAllPaidMarksInvoicePaid(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
	}
	result, err := ApplyInstallmentPayment(schedules, 1, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, result.InvoiceStatus)
}

func TestApplyInstallmentPaymentRejectsShortfall(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
	}
	_, err := ApplyInstallmentPayment(schedules, 1, decimal.NewFromInt(10), time.Now())
	assert.Error(t, err)
}

func TestApplyInstallmentPaymentRejectsOutOfSequence(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
		{InstallmentNumber: 2, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
	}
	_, err := ApplyInstallmentPayment(schedules, 2, decimal.NewFromInt(50), time.Now())
	assert.Error(t, err)
}

func TestAdjustScheduleConservesRemainingTotal(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), TaxAmount: decimal.NewFromInt(5), Status: InstallmentPaid},
		{InstallmentNumber: 2, Amount: decimal.NewFromInt(30), TaxAmount: decimal.NewFromInt(3), Status: InstallmentUnpaid},
		{InstallmentNumber: 3, Amount: decimal.NewFromInt(20), TaxAmount: decimal.NewFromInt(2), Status: InstallmentUnpaid},
	}

	updated, err := AdjustSchedule(schedules, []AdjustmentPair{
		{InstallmentNumber: 2, NewAmount: decimal.NewFromInt(35)},
		{InstallmentNumber: 3, NewAmount: decimal.NewFromInt(15)},
	}, money.USD)
	require.NoError(t, err)

	byNumber := make(map[int]*InstallmentSchedule)
	for i := range updated {
		byNumber[updated[i].InstallmentNumber] = &updated[i]
	}
	assert.True(t, byNumber[1].Amount.Equal(decimal.NewFromInt(50)), "paid installment must never be touched")
	assert.True(t, byNumber[2].Amount.Equal(decimal.NewFromInt(35)))
	assert.True(t, byNumber[3].Amount.Equal(decimal.NewFromInt(15)))

	sumTax := byNumber[2].TaxAmount.Add(byNumber[3].TaxAmount)
	assert.True(t, sumTax.Equal(decimal.NewFromInt(5)), "unpaid tax total must be conserved across the redistribution")
}

func TestAdjustScheduleRejectsTotalMismatch(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
		{InstallmentNumber: 2, Amount: decimal.NewFromInt(50), Status: InstallmentUnpaid},
	}
	_, err := AdjustSchedule(schedules, []AdjustmentPair{
		{InstallmentNumber: 1, NewAmount: decimal.NewFromInt(60)},
		{InstallmentNumber: 2, NewAmount: decimal.NewFromInt(60)},
	}, money.USD)
	assert.Error(t, err)
}

func TestAdjustScheduleRejectsPaidInstallment(t *testing.T) {
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Amount: decimal.NewFromInt(50), Status: InstallmentPaid},
	}
	_, err := AdjustSchedule(schedules, []AdjustmentPair{
		{InstallmentNumber: 1, NewAmount: decimal.NewFromInt(60)},
	}, money.USD)
	assert.Error(t, err)
}

func TestSweepOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	schedules := []InstallmentSchedule{
		{InstallmentNumber: 1, Status: InstallmentUnpaid, DueDate: now.AddDate(0, 0, -1)},
		{InstallmentNumber: 2, Status: InstallmentUnpaid, DueDate: now.AddDate(0, 0, 1)},
		{InstallmentNumber: 3, Status: InstallmentPaid, DueDate: now.AddDate(0, 0, -5)},
	}

	touched := SweepOverdue(schedules, now)
	assert.Equal(t, []int{1}, touched)
	assert.Equal(t, InstallmentOverdue, schedules[0].Status)
	assert.Equal(t, InstallmentUnpaid, schedules[1].Status)
	assert.Equal(t, InstallmentPaid, schedules[2].Status, "a paid installment is never reclassified as overdue")
}
