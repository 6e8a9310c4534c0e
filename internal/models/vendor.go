package models

import "github.com/shopspring/decimal"

// Vendor statuses. Any status is reachable from any other; the admin
// console is an override surface, not a workflow.
const (
	VendorStatusPending   = "pending"
	VendorStatusApproved  = "approved"
	VendorStatusSuspended = "suspended"
)

// Vendor is a selling party on the marketplace. CommissionRate is a
// fraction in [0,1] and is read live: derived commission amounts always use
// the current rate, including for historical orders.
type Vendor struct {
	BaseModel
	Name           string          `json:"name"`
	Phone          string          `gorm:"index" json:"phone"`
	Status         string          `gorm:"index" json:"status"`
	CommissionRate decimal.Decimal `gorm:"type:numeric" json:"commission_rate"`
}

// Courier delivers orders claimed from the pickup queue.
type Courier struct {
	BaseModel
	Name    string `json:"name"`
	Phone   string `gorm:"index" json:"phone"`
	Vehicle string `json:"vehicle"`
}
