package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/types"
)

func at(minute int) time.Time {
	return time.Date(2026, 3, 1, 12, minute, 0, 0, time.UTC)
}

func TestCalculatePaymentStatus(t *testing.T) {
	tests := []struct {
		name          string
		net, paid     string
		wantStatus    PaymentStatus
		wantRemaining string
		wantOverpaid  string
		wantProgress  int
	}{
		{"unpaid", "30", "0", PaymentUnpaid, "30", "0", 0},
		{"partial", "30", "10", PaymentPartial, "20", "0", 33},
		{"paid exactly", "30", "30", PaymentPaid, "0", "0", 100},
		{"overpaid", "30", "50", PaymentOverpaid, "0", "20", 100},
		{"negative paid clamps to unpaid", "30", "-5", PaymentUnpaid, "30", "0", 0},
		{"zero base zero paid", "0", "0", PaymentUnpaid, "0", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CalculatePaymentStatus(types.MustMoney(tt.net), types.MustMoney(tt.paid))

			assert.Equal(t, tt.wantStatus, s.Status)
			assert.True(t, s.RemainingAmount.Equal(types.MustMoney(tt.wantRemaining)), "remaining %s", s.RemainingAmount)
			assert.True(t, s.OverpaidAmount.Equal(types.MustMoney(tt.wantOverpaid)), "overpaid %s", s.OverpaidAmount)
			assert.Equal(t, tt.wantProgress, s.ProgressPercentage)
			assert.False(t, s.PaymentMadeAfterReturns)
		})
	}
}

func TestPaymentMadeAfterReturns(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   bool
	}{
		{"no events", nil, false},
		{"payment only", []Event{{EventPaymentMade, at(1)}}, false},
		{"return only", []Event{{EventFullReturn, at(1)}}, false},
		{"payment before return", []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}, false},
		{"payment after return", []Event{
			{EventFullReturn, at(1)},
			{EventPaymentMade, at(2)},
		}, true},
		{"earliest payment counts", []Event{
			{EventPaymentMade, at(1)},
			{EventPartialReturn, at(2)},
			{EventPaymentMade, at(3)},
		}, false},
		{"latest return counts", []Event{
			{EventPartialReturn, at(1)},
			{EventPaymentMade, at(2)},
			{EventFullReturn, at(3)},
		}, false},
		{"simultaneous is not after", []Event{
			{EventFullReturn, at(1)},
			{EventPaymentMade, at(1)},
		}, false},
		{"unrelated events ignored", []Event{
			{EventOrderPlaced, at(0)},
			{EventFullReceipt, at(1)},
			{EventFullReturn, at(2)},
			{EventStatusChange, at(3)},
			{EventPaymentMade, at(4)},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentMadeAfterReturns(tt.events))
		})
	}
}

func TestCalculateNetPaymentStatus(t *testing.T) {
	original := types.MustMoney("50")
	net := types.MustMoney("30")

	t.Run("payment before returns compares against original", func(t *testing.T) {
		events := []Event{
			{EventPaymentMade, at(1)},
			{EventFullReturn, at(2)},
		}

		s := CalculateNetPaymentStatus(original, net, types.MustMoney("50"), events)

		assert.Equal(t, PaymentPaid, s.Status)
		assert.False(t, s.PaymentMadeAfterReturns)
		assert.True(t, s.BaseAmount.Equal(original))
	})

	t.Run("payment after returns compares against net", func(t *testing.T) {
		events := []Event{
			{EventFullReturn, at(1)},
			{EventPaymentMade, at(2)},
		}

		s := CalculateNetPaymentStatus(original, net, types.MustMoney("30"), events)

		assert.Equal(t, PaymentPaid, s.Status)
		assert.True(t, s.PaymentMadeAfterReturns)
		assert.True(t, s.BaseAmount.Equal(net))
	})

	t.Run("partial progress rounds against base", func(t *testing.T) {
		events := []Event{
			{EventFullReturn, at(1)},
			{EventPaymentMade, at(2)},
		}

		s := CalculateNetPaymentStatus(original, net, types.MustMoney("10"), events)

		assert.Equal(t, PaymentPartial, s.Status)
		assert.Equal(t, 33, s.ProgressPercentage)
		assert.True(t, s.RemainingAmount.Equal(types.MustMoney("20")))
	})
}

func TestPaymentVariantsAgreeWithoutReturns(t *testing.T) {
	// With no returns originalAmount == netAmount and no return events exist,
	// so both variants must classify identically.
	amounts := []string{"0", "10", "30", "45"}
	events := []Event{
		{EventOrderPlaced, at(0)},
		{EventFullReceipt, at(1)},
		{EventPaymentMade, at(2)},
	}

	for _, paid := range amounts {
		simple := CalculatePaymentStatus(types.MustMoney("30"), types.MustMoney(paid))
		chrono := CalculateNetPaymentStatus(types.MustMoney("30"), types.MustMoney("30"), types.MustMoney(paid), events)

		assert.Equal(t, simple.Status, chrono.Status, "paid=%s", paid)
		assert.True(t, simple.RemainingAmount.Equal(chrono.RemainingAmount), "paid=%s", paid)
		assert.True(t, simple.OverpaidAmount.Equal(chrono.OverpaidAmount), "paid=%s", paid)
		assert.Equal(t, simple.ProgressPercentage, chrono.ProgressPercentage, "paid=%s", paid)
	}
}
