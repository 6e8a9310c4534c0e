package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is an append-only payout record. It is deliberately not
// reconciled against derived earnings: recording a payout does not reduce a
// vendor's pending balance.
type Settlement struct {
	BaseModel
	VendorID      uuid.UUID       `gorm:"type:uuid;index" json:"vendor_id"`
	Amount        decimal.Decimal `gorm:"type:numeric" json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID *string         `json:"transaction_id,omitempty"`
}
