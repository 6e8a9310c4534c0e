package models

import "github.com/google/uuid"

// Account roles.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
	RoleCourier  = "courier"
)

// User is an authenticated account for any of the four actors. Vendor and
// courier accounts carry a link to their marketplace entity.
type User struct {
	BaseModel
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"index" json:"role"`
	VendorID     *uuid.UUID `gorm:"type:uuid" json:"vendor_id,omitempty"`
	CourierID    *uuid.UUID `gorm:"type:uuid" json:"courier_id,omitempty"`
}
