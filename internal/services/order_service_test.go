package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/models"
)

func TestCreateOrderSplitsByVendor(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendorA := createVendor(t, db, "0.10")
	vendorB := createVendor(t, db, "0.12")

	order, err := svc.CreateOrder(ctx, createOrderInput(
		cartItem(vendorA.ID, "Keyboard", "2000", 2),
		cartItem(vendorA.ID, "Mouse", "1000", 1),
		cartItem(vendorB.ID, "Monitor", "7500", 1),
	))
	require.NoError(t, err)
	require.Len(t, order.SubOrders, 2)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.NotEmpty(t, order.OrderNumber)

	bySub := make(map[uuid.UUID]models.VendorSubOrder)
	for _, sub := range order.SubOrders {
		bySub[sub.VendorID] = sub
	}
	require.True(t, bySub[vendorA.ID].Subtotal.Equal(decimal.RequireFromString("5000")))
	require.True(t, bySub[vendorB.ID].Subtotal.Equal(decimal.RequireFromString("7500")))
	require.Len(t, bySub[vendorA.ID].Items, 2)
	require.Len(t, bySub[vendorB.ID].Items, 1)

	// sum(subtotals) + platform fee + shipping fee == total
	expected := decimal.RequireFromString("5000").
		Add(decimal.RequireFromString("7500")).
		Add(order.PlatformFee).
		Add(order.ShippingFee)
	require.True(t, order.TotalAmount.Equal(expected), "total = %s", order.TotalAmount)

	// Line totals add up within each sub-order.
	for _, sub := range order.SubOrders {
		sum := decimal.Zero
		for _, item := range sub.Items {
			require.True(t, item.LineTotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
			sum = sum.Add(item.LineTotal)
		}
		require.True(t, sub.Subtotal.Equal(sum))
	}
}

func TestCreateOrderRoundTripThroughVendorView(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendorA := createVendor(t, db, "0.10")
	vendorB := createVendor(t, db, "0.12")

	created, err := svc.CreateOrder(ctx, createOrderInput(
		cartItem(vendorA.ID, "Teapot", "350.50", 2),
		cartItem(vendorB.ID, "Rug", "1200", 1),
	))
	require.NoError(t, err)

	orders, err := svc.GetVendorOrders(ctx, vendorA.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, created.ID, orders[0].ID)

	// Vendor view narrows sub-orders to the requesting vendor.
	require.Len(t, orders[0].SubOrders, 1)
	sub := orders[0].SubOrders[0]
	require.Equal(t, vendorA.ID, sub.VendorID)
	require.True(t, sub.Subtotal.Equal(decimal.RequireFromString("701")))
	require.Len(t, sub.Items, 1)
	require.Equal(t, "Teapot", sub.Items[0].Name)
	require.Equal(t, 2, sub.Items[0].Quantity)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	_, err := svc.CreateOrder(ctx, createOrderInput())
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Cup", "10", 0)))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrder(ctx, createOrderInput(CartItem{
		VendorID:  vendor.ID,
		ProductID: "p1",
		Name:      "Cup",
		UnitPrice: decimal.RequireFromString("-1"),
		Quantity:  1,
	}))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrder(ctx, createOrderInput(cartItem(uuid.New(), "Ghost", "10", 1)))
	require.ErrorIs(t, err, ErrVendorNotFound)

	pending := &models.Vendor{Name: "Pending Shop", Status: models.VendorStatusPending,
		CommissionRate: decimal.RequireFromString("0.10")}
	require.NoError(t, db.Create(pending).Error)
	_, err = svc.CreateOrder(ctx, createOrderInput(cartItem(pending.ID, "Cup", "10", 1)))
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")
	order, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Lamp", "500", 1)))
	require.NoError(t, err)

	courier := driveToShipped(t, svc, db, order.ID)

	shipped, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.AssignedCourierID)
	require.Equal(t, courier.ID, *shipped.AssignedCourierID)

	delivered, err := svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, delivered.Status)
	require.Equal(t, models.PaymentStatusPaid, delivered.PaymentStatus)
}

func TestInvalidTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")
	order, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Vase", "300", 1)))
	require.NoError(t, err)

	// Skipping ahead is rejected.
	_, err = svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// shipped is only reachable through a courier claim.
	_, err = svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown order id.
	_, err = svc.UpdateOrderStatus(ctx, uuid.New(), models.OrderStatusProcessing)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	delivered, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Plate", "100", 1)))
	require.NoError(t, err)
	driveToDelivered(t, svc, db, delivered.ID)

	_, err = svc.UpdateOrderStatus(ctx, delivered.ID, models.OrderStatusProcessing)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.CancelOrder(ctx, delivered.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Bowl", "100", 1)))
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, cancelled.ID)
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, cancelled.ID, models.OrderStatusProcessing)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.CancelOrder(ctx, cancelled.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestClaimForDelivery(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")
	order, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Chair", "800", 1)))
	require.NoError(t, err)

	first := createCourier(t, db)
	second := createCourier(t, db)

	// Claiming before the order is ready is an invalid transition.
	_, err = svc.ClaimForDelivery(ctx, order.ID, first.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusReadyForPickup)
	require.NoError(t, err)

	claimed, err := svc.ClaimForDelivery(ctx, order.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, claimed.Status)
	require.Equal(t, first.ID, *claimed.AssignedCourierID)

	// The losing courier gets a conflict, and the assignment is unchanged.
	_, err = svc.ClaimForDelivery(ctx, order.ID, second.ID)
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	after, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, *after.AssignedCourierID)

	_, err = svc.ClaimForDelivery(ctx, uuid.New(), first.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
	_, err = svc.ClaimForDelivery(ctx, order.ID, uuid.New())
	require.ErrorIs(t, err, ErrCourierNotFound)
}

func TestDeliveryQueue(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	ctx := context.Background()

	vendor := createVendor(t, db, "0.10")

	ready, err := svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Desk", "1500", 1)))
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, ready.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, ready.ID, models.OrderStatusReadyForPickup)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, createOrderInput(cartItem(vendor.ID, "Shelf", "900", 1)))
	require.NoError(t, err)

	queue, err := svc.ListDeliveryQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, ready.ID, queue[0].ID)

	courier := createCourier(t, db)
	_, err = svc.ClaimForDelivery(ctx, ready.ID, courier.ID)
	require.NoError(t, err)

	queue, err = svc.ListDeliveryQueue(ctx)
	require.NoError(t, err)
	require.Empty(t, queue)

	mine, err := svc.ListCourierOrders(ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, ready.ID, mine[0].ID)
}
