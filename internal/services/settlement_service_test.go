package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSettlementService(db *gorm.DB) *SettlementService {
	vendors := NewVendorService(db)
	earnings := NewEarningsService(db, vendors)
	return NewSettlementService(db, earnings, vendors, nil, zap.NewNop())
}

func TestRecordAndListSettlements(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlementService(db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")
	txID := "bank-ref-42"

	settlement, err := svc.RecordSettlement(ctx, vendor.ID,
		decimal.RequireFromString("1000"), "bank_transfer", &txID)
	require.NoError(t, err)
	require.Equal(t, vendor.ID, settlement.VendorID)
	require.True(t, settlement.Amount.Equal(decimal.RequireFromString("1000")))
	require.Equal(t, "bank_transfer", settlement.PaymentMethod)
	require.NotNil(t, settlement.TransactionID)
	require.Equal(t, txID, *settlement.TransactionID)

	settlements, err := svc.ListSettlements(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	require.Equal(t, settlement.ID, settlements[0].ID)
}

func TestSettlementDoesNotReduceEarnings(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlementService(db)
	orders := newOrderService(t, db)
	earnings := NewEarningsService(db, NewVendorService(db))
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")
	order, err := orders.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Table", "5000", 1)))
	require.NoError(t, err)
	driveToDelivered(t, orders, db, order.ID)

	before, err := earnings.VendorEarningsSummary(ctx, vendor.ID)
	require.NoError(t, err)

	_, err = svc.RecordSettlement(ctx, vendor.ID, decimal.RequireFromString("4500"), "cash", nil)
	require.NoError(t, err)

	// The earnings projection is independent of payouts.
	after, err := earnings.VendorEarningsSummary(ctx, vendor.ID)
	require.NoError(t, err)
	require.True(t, after.TotalEarnings.Equal(before.TotalEarnings))
	require.True(t, after.PendingEarnings.Equal(before.PendingEarnings))
}

func TestRecordSettlementValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlementService(db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	_, err := svc.RecordSettlement(ctx, vendor.ID, decimal.Zero, "cash", nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordSettlement(ctx, vendor.ID, decimal.RequireFromString("-10"), "cash", nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordSettlement(ctx, vendor.ID, decimal.RequireFromString("10"), "", nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordSettlement(ctx, uuid.New(), decimal.RequireFromString("10"), "cash", nil)
	require.ErrorIs(t, err, ErrVendorNotFound)

	_, err = svc.ListSettlements(ctx, uuid.New())
	require.ErrorIs(t, err, ErrVendorNotFound)
}

func TestOverSettlementStillRecorded(t *testing.T) {
	db := newTestDB(t)
	svc := newSettlementService(db)
	ctx := context.Background()

	// Vendor with no earnings at all: any payout exceeds pending.
	vendor := createVendor(t, db, "0.10")

	settlement, err := svc.RecordSettlement(ctx, vendor.ID,
		decimal.RequireFromString("9999"), "cash", nil)
	require.NoError(t, err)
	require.True(t, settlement.Amount.Equal(decimal.RequireFromString("9999")))

	settlements, err := svc.ListSettlements(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
}
