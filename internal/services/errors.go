package services

import "errors"

// Service-level errors. Handlers map these onto HTTP statuses; everything
// here is recoverable and returned to the caller.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrVendorNotFound    = errors.New("vendor not found")
	ErrCourierNotFound   = errors.New("courier not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyAssigned   = errors.New("order already assigned to a courier")
	ErrInvalidRate       = errors.New("commission rate must be between 0 and 1")
	ErrValidation        = errors.New("validation failed")
)
