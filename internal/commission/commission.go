// Package commission derives commission and vendor earnings from orders.
// Nothing here is persisted: a Commission is a read-time projection of a
// vendor sub-order, the vendor's current commission rate, and the parent
// order's status. Keeping it derived avoids a dual-write between the order
// ledger and an earnings table.
package commission

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
)

// Commission status mirrors the parent order: paid once delivered,
// pending otherwise.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Commission is the platform's cut and the vendor's net for one sub-order.
type Commission struct {
	OrderID  uuid.UUID       `json:"order_id"`
	VendorID uuid.UUID       `json:"vendor_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Amount   decimal.Decimal `json:"commission_amount"`
	Earnings decimal.Decimal `json:"vendor_earnings"`
	Status   string          `json:"status"`
}

// EarningsSummary buckets a vendor's earnings by derived commission status.
type EarningsSummary struct {
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
}

// Compute derives the commission for one sub-order. The commission amount
// is rounded to two decimal places (half away from zero) and earnings are
// the exact remainder, so Amount + Earnings == Subtotal always holds.
func Compute(sub models.VendorSubOrder, rate decimal.Decimal, orderStatus string) Commission {
	amount := sub.Subtotal.Mul(rate).Round(2)
	status := StatusPending
	if orderStatus == models.OrderStatusDelivered {
		status = StatusPaid
	}

	return Commission{
		OrderID:  sub.OrderID,
		VendorID: sub.VendorID,
		Subtotal: sub.Subtotal,
		Amount:   amount,
		Earnings: sub.Subtotal.Sub(amount),
		Status:   status,
	}
}

// Summarize folds commissions into paid and pending earnings buckets.
func Summarize(commissions []Commission) EarningsSummary {
	summary := EarningsSummary{
		TotalEarnings:   decimal.Zero,
		PendingEarnings: decimal.Zero,
	}

	for _, c := range commissions {
		if c.Status == StatusPaid {
			summary.TotalEarnings = summary.TotalEarnings.Add(c.Earnings)
		} else {
			summary.PendingEarnings = summary.PendingEarnings.Add(c.Earnings)
		}
	}

	return summary
}
