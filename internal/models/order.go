package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. The delivery lifecycle moves strictly forward; cancelled
// is reachable from any non-terminal status.
const (
	OrderStatusPending        = "pending"
	OrderStatusProcessing     = "processing"
	OrderStatusReadyForPickup = "ready_for_pickup"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// IsTerminalStatus reports whether no further transitions are allowed.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// Order is a customer checkout spanning one or more vendors. Customer and
// shipping details are snapshotted at creation and never updated.
type Order struct {
	BaseModel
	OrderNumber   string     `gorm:"uniqueIndex" json:"order_number"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Status        string     `gorm:"index" json:"status"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ShippingAddressLine string `json:"shipping_address_line"`
	ShippingCity        string `json:"shipping_city"`
	ShippingDistrict    string `json:"shipping_district"`

	PlatformFee decimal.Decimal `gorm:"type:numeric" json:"platform_fee"`
	ShippingFee decimal.Decimal `gorm:"type:numeric" json:"shipping_fee"`
	TotalAmount decimal.Decimal `gorm:"type:numeric" json:"total_amount"`

	AssignedCourierID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_courier_id"`
	AssignedCourier   *Courier   `json:"assigned_courier,omitempty"`

	SubOrders []VendorSubOrder `json:"sub_orders,omitempty"`
}

// VendorSubOrder is the per-vendor partition of an order. The vendor_id
// index is what vendor-scoped order and earnings lookups go through.
type VendorSubOrder struct {
	BaseModel
	OrderID  uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	VendorID uuid.UUID       `gorm:"type:uuid;index" json:"vendor_id"`
	Subtotal decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	Items    []OrderItem     `gorm:"foreignKey:SubOrderID" json:"items,omitempty"`
}

// OrderItem is a priced line snapshot. Product identity stays an opaque
// reference into the external catalog.
type OrderItem struct {
	BaseModel
	SubOrderID uuid.UUID       `gorm:"type:uuid;index" json:"sub_order_id"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Variant    string          `json:"variant"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `gorm:"type:numeric" json:"line_total"`
}
