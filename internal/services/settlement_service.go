package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/metrics"
	"github.com/example/bazaar/internal/models"
)

// SettlementService keeps the payout history. Settlements are append-only
// and independent of the earnings projection: recording one does not reduce
// pending earnings. A payout above the vendor's computed pending balance is
// logged as a warning but still written.
type SettlementService struct {
	db       *gorm.DB
	earnings *EarningsService
	vendors  *VendorService
	notifier *NotifierService
	logger   *zap.Logger
}

// NewSettlementService constructs SettlementService.
func NewSettlementService(db *gorm.DB, earnings *EarningsService, vendors *VendorService, notifier *NotifierService, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		db:       db,
		earnings: earnings,
		vendors:  vendors,
		notifier: notifier,
		logger:   logger,
	}
}

// RecordSettlement appends a payout for the vendor.
func (s *SettlementService) RecordSettlement(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal, paymentMethod string, transactionID *string) (*models.Settlement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: settlement amount must be positive", ErrValidation)
	}
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	vendor, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	summary, err := s.earnings.VendorEarningsSummary(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(summary.PendingEarnings) {
		s.logger.Warn("settlement exceeds pending earnings",
			zap.String("vendor_id", vendorID.String()),
			zap.String("amount", amount.String()),
			zap.String("pending_earnings", summary.PendingEarnings.String()))
	}

	settlement := models.Settlement{
		VendorID:      vendorID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		TransactionID: transactionID,
	}
	if err := s.db.WithContext(ctx).Create(&settlement).Error; err != nil {
		return nil, err
	}

	metrics.SettlementsRecorded.Inc()
	if s.notifier != nil {
		go func() {
			if err := s.notifier.NotifySettlement(vendor.Name, amount, paymentMethod); err != nil {
				s.logger.Warn("settlement notification failed", zap.Error(err))
			}
		}()
	}

	return &settlement, nil
}

// ListSettlements returns the vendor's payouts, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, vendorID uuid.UUID) ([]models.Settlement, error) {
	if _, err := s.vendors.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	var settlements []models.Settlement
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at desc").
		Find(&settlements).Error
	return settlements, err
}
