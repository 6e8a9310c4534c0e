package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/models"
)

func TestCreateVendorDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(db)
	ctx := context.Background()

	vendor := &models.Vendor{Name: "Silk Road Goods"}
	require.NoError(t, svc.CreateVendor(ctx, vendor))
	require.Equal(t, models.VendorStatusPending, vendor.Status)
	require.True(t, vendor.CommissionRate.Equal(decimal.RequireFromString("0.10")))

	fetched, err := svc.GetVendor(ctx, vendor.ID)
	require.NoError(t, err)
	require.Equal(t, "Silk Road Goods", fetched.Name)
	require.True(t, fetched.CommissionRate.Equal(decimal.RequireFromString("0.10")))
}

func TestCreateVendorValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(db)
	ctx := context.Background()

	err := svc.CreateVendor(ctx, &models.Vendor{})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.CreateVendor(ctx, &models.Vendor{Name: "Shop", Status: "banned"})
	require.ErrorIs(t, err, ErrValidation)

	err = svc.CreateVendor(ctx, &models.Vendor{
		Name:           "Shop",
		CommissionRate: decimal.RequireFromString("1.5"),
	})
	require.ErrorIs(t, err, ErrInvalidRate)
}

func TestSetCommissionRateBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	_, err := svc.SetCommissionRate(ctx, vendor.ID, decimal.RequireFromString("-0.01"))
	require.ErrorIs(t, err, ErrInvalidRate)

	_, err = svc.SetCommissionRate(ctx, vendor.ID, decimal.RequireFromString("1.01"))
	require.ErrorIs(t, err, ErrInvalidRate)

	// Boundary values are accepted.
	updated, err := svc.SetCommissionRate(ctx, vendor.ID, decimal.Zero)
	require.NoError(t, err)
	require.True(t, updated.CommissionRate.IsZero())

	updated, err = svc.SetCommissionRate(ctx, vendor.ID, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.True(t, updated.CommissionRate.Equal(decimal.NewFromInt(1)))

	_, err = svc.SetCommissionRate(ctx, uuid.New(), decimal.RequireFromString("0.15"))
	require.ErrorIs(t, err, ErrVendorNotFound)
}

func TestSetStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	// No ordering restriction between statuses.
	updated, err := svc.SetStatus(ctx, vendor.ID, models.VendorStatusSuspended)
	require.NoError(t, err)
	require.Equal(t, models.VendorStatusSuspended, updated.Status)

	updated, err = svc.SetStatus(ctx, vendor.ID, models.VendorStatusApproved)
	require.NoError(t, err)
	require.Equal(t, models.VendorStatusApproved, updated.Status)

	_, err = svc.SetStatus(ctx, vendor.ID, "deleted")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(ctx, uuid.New(), models.VendorStatusApproved)
	require.ErrorIs(t, err, ErrVendorNotFound)
}

func TestListVendorsFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(db)
	ctx := context.Background()

	createVendor(t, db, "0.10")
	createVendor(t, db, "0.12")
	pending := &models.Vendor{Name: "New Shop", Status: models.VendorStatusPending,
		CommissionRate: decimal.RequireFromString("0.10")}
	require.NoError(t, db.Create(pending).Error)

	all, err := svc.ListVendors(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	approved, err := svc.ListVendors(ctx, models.VendorStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 2)
}
