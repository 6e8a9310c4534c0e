package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/commission"
	"github.com/example/bazaar/internal/models"
)

// EarningsService projects the order ledger into per-vendor commissions and
// earnings summaries. Nothing is cached: every call recomputes from the
// current orders and the vendor's current commission rate.
type EarningsService struct {
	db      *gorm.DB
	vendors *VendorService
}

// NewEarningsService constructs EarningsService.
func NewEarningsService(db *gorm.DB, vendors *VendorService) *EarningsService {
	return &EarningsService{db: db, vendors: vendors}
}

// VendorCommissions derives one commission per sub-order belonging to the
// vendor. Lookups go through the vendor_id index on sub-orders, not a scan
// over all orders.
func (s *EarningsService) VendorCommissions(ctx context.Context, vendorID uuid.UUID) ([]commission.Commission, error) {
	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	var subOrders []models.VendorSubOrder
	if err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at asc").
		Find(&subOrders).Error; err != nil {
		return nil, err
	}
	if len(subOrders) == 0 {
		return []commission.Commission{}, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(subOrders))
	for _, sub := range subOrders {
		orderIDs = append(orderIDs, sub.OrderID)
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Select("id", "status").
		Where("id IN ?", orderIDs).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	statusByOrder := make(map[uuid.UUID]string, len(orders))
	for _, order := range orders {
		statusByOrder[order.ID] = order.Status
	}

	commissions := make([]commission.Commission, 0, len(subOrders))
	for _, sub := range subOrders {
		commissions = append(commissions,
			commission.Compute(sub, vendor.CommissionRate, statusByOrder[sub.OrderID]))
	}
	return commissions, nil
}

// VendorEarningsSummary buckets the vendor's derived earnings into paid and
// pending totals.
func (s *EarningsService) VendorEarningsSummary(ctx context.Context, vendorID uuid.UUID) (commission.EarningsSummary, error) {
	commissions, err := s.VendorCommissions(ctx, vendorID)
	if err != nil {
		return commission.EarningsSummary{}, err
	}
	return commission.Summarize(commissions), nil
}
