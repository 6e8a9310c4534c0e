package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache database keeps all pooled connections
	// on the same in-memory store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newOrderService(t *testing.T, db *gorm.DB) *OrderService {
	t.Helper()
	return NewOrderService(db, nil, zap.NewNop(),
		decimal.RequireFromString("50"), decimal.RequireFromString("150"))
}

func createVendor(t *testing.T, db *gorm.DB, rate string) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		Name:           "Test Vendor",
		Status:         models.VendorStatusApproved,
		CommissionRate: decimal.RequireFromString(rate),
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func createCourier(t *testing.T, db *gorm.DB) *models.Courier {
	t.Helper()

	courier := &models.Courier{Name: "Test Courier", Vehicle: "bike"}
	require.NoError(t, db.Create(courier).Error)
	return courier
}

func cartItem(vendorID uuid.UUID, name, unitPrice string, quantity int) CartItem {
	return CartItem{
		VendorID:  vendorID,
		ProductID: uuid.NewString(),
		Name:      name,
		UnitPrice: decimal.RequireFromString(unitPrice),
		Quantity:  quantity,
	}
}

func createOrderInput(items ...CartItem) CreateOrderInput {
	return CreateOrderInput{
		Customer: CustomerSnapshot{
			Name:  "Alex Buyer",
			Email: "alex@example.com",
			Phone: "+998901234567",
		},
		Address: AddressSnapshot{
			Line:     "12 Navoi Street",
			City:     "Tashkent",
			District: "Yunusobod",
		},
		PaymentMethod: "cash",
		Items:         items,
	}
}

// driveToShipped walks an order from pending to shipped via a fresh
// courier's claim and returns the courier.
func driveToShipped(t *testing.T, svc *OrderService, db *gorm.DB, orderID uuid.UUID) *models.Courier {
	t.Helper()
	ctx := context.Background()

	_, err := svc.UpdateOrderStatus(ctx, orderID, models.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, orderID, models.OrderStatusReadyForPickup)
	require.NoError(t, err)

	courier := createCourier(t, db)
	_, err = svc.ClaimForDelivery(ctx, orderID, courier.ID)
	require.NoError(t, err)
	return courier
}

func driveToDelivered(t *testing.T, svc *OrderService, db *gorm.DB, orderID uuid.UUID) {
	t.Helper()
	driveToShipped(t, svc, db, orderID)
	_, err := svc.UpdateOrderStatus(context.Background(), orderID, models.OrderStatusDelivered)
	require.NoError(t, err)
}
