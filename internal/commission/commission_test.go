package commission

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/models"
)

func subOrder(subtotal string) models.VendorSubOrder {
	return models.VendorSubOrder{
		OrderID:  uuid.New(),
		VendorID: uuid.New(),
		Subtotal: decimal.RequireFromString(subtotal),
	}
}

func TestComputeReferenceRates(t *testing.T) {
	a := Compute(subOrder("5000"), decimal.RequireFromString("0.10"), models.OrderStatusPending)
	require.True(t, a.Amount.Equal(decimal.RequireFromString("500")), "commission = %s", a.Amount)
	require.True(t, a.Earnings.Equal(decimal.RequireFromString("4500")), "earnings = %s", a.Earnings)

	b := Compute(subOrder("7500"), decimal.RequireFromString("0.12"), models.OrderStatusPending)
	require.True(t, b.Amount.Equal(decimal.RequireFromString("900")))
	require.True(t, b.Earnings.Equal(decimal.RequireFromString("6600")))
}

func TestComputeExactness(t *testing.T) {
	// Awkward subtotals and rates must never leak rounding drift.
	cases := []struct {
		subtotal string
		rate     string
	}{
		{"99.99", "0.1"},
		{"0.01", "0.33"},
		{"123456.78", "0.075"},
		{"10", "0.333333"},
		{"19.95", "1"},
		{"19.95", "0"},
	}

	for _, tc := range cases {
		c := Compute(subOrder(tc.subtotal), decimal.RequireFromString(tc.rate), models.OrderStatusPending)
		require.True(t, c.Amount.Add(c.Earnings).Equal(c.Subtotal),
			"subtotal %s rate %s: %s + %s != %s", tc.subtotal, tc.rate, c.Amount, c.Earnings, c.Subtotal)
	}
}

func TestStatusFollowsOrder(t *testing.T) {
	rate := decimal.RequireFromString("0.10")

	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusReadyForPickup,
		models.OrderStatusShipped,
		models.OrderStatusCancelled,
	} {
		c := Compute(subOrder("100"), rate, status)
		require.Equal(t, StatusPending, c.Status, "order status %s", status)
	}

	c := Compute(subOrder("100"), rate, models.OrderStatusDelivered)
	require.Equal(t, StatusPaid, c.Status)
}

func TestSummarize(t *testing.T) {
	rate := decimal.RequireFromString("0.10")
	commissions := []Commission{
		Compute(subOrder("5000"), rate, models.OrderStatusDelivered),
		Compute(subOrder("3000"), rate, models.OrderStatusShipped),
		Compute(subOrder("2000"), rate, models.OrderStatusPending),
	}

	summary := Summarize(commissions)
	require.True(t, summary.TotalEarnings.Equal(decimal.RequireFromString("4500")))
	require.True(t, summary.PendingEarnings.Equal(decimal.RequireFromString("4500")))

	// total + pending covers every commission's earnings.
	var all decimal.Decimal
	for _, c := range commissions {
		all = all.Add(c.Earnings)
	}
	require.True(t, summary.TotalEarnings.Add(summary.PendingEarnings).Equal(all))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	require.True(t, summary.TotalEarnings.IsZero())
	require.True(t, summary.PendingEarnings.IsZero())
}
