package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// VendorService is the vendor registry: identity, approval status and the
// commission rate used by every derived commission computation.
type VendorService struct {
	db *gorm.DB
}

// NewVendorService constructs VendorService.
func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

// CreateVendor registers a vendor. New vendors start pending unless a
// status is provided; a zero rate is replaced with the 10% default.
func (s *VendorService) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor.Name == "" {
		return fmt.Errorf("%w: vendor name is required", ErrValidation)
	}
	if vendor.Status == "" {
		vendor.Status = models.VendorStatusPending
	}
	if !validVendorStatus(vendor.Status) {
		return fmt.Errorf("%w: unknown vendor status %q", ErrValidation, vendor.Status)
	}
	if vendor.CommissionRate.IsZero() {
		vendor.CommissionRate = decimal.RequireFromString("0.10")
	}
	if !rateInRange(vendor.CommissionRate) {
		return ErrInvalidRate
	}

	return s.db.WithContext(ctx).Create(vendor).Error
}

// GetVendor fetches a vendor by id.
func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// ListVendors returns all vendors, optionally filtered by status.
func (s *VendorService) ListVendors(ctx context.Context, status string) ([]models.Vendor, error) {
	query := s.db.WithContext(ctx).Model(&models.Vendor{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var vendors []models.Vendor
	if err := query.Order("created_at desc").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// SetCommissionRate updates the vendor's commission rate. The change is
// live: commissions for existing orders, delivered ones included, are
// recomputed with the new rate on the next read.
func (s *VendorService) SetCommissionRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) (*models.Vendor, error) {
	if !rateInRange(rate) {
		return nil, ErrInvalidRate
	}

	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(vendor).
		Update("commission_rate", rate).Error; err != nil {
		return nil, err
	}

	vendor.CommissionRate = rate
	return vendor, nil
}

// SetStatus moves a vendor to any of the known statuses. There is no
// ordering restriction: suspend and re-approve are both single writes.
func (s *VendorService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Vendor, error) {
	if !validVendorStatus(status) {
		return nil, fmt.Errorf("%w: unknown vendor status %q", ErrValidation, status)
	}

	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(vendor).
		Update("status", status).Error; err != nil {
		return nil, err
	}

	vendor.Status = status
	return vendor, nil
}

func validVendorStatus(status string) bool {
	switch status {
	case models.VendorStatusPending, models.VendorStatusApproved, models.VendorStatusSuspended:
		return true
	}
	return false
}

func rateInRange(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}
