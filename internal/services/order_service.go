package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/metrics"
	"github.com/example/bazaar/internal/models"
)

// allowedTransitions is the order state machine. shipped is deliberately
// absent as a target: it is only reachable through ClaimForDelivery, which
// writes the courier assignment in the same statement. cancelled is handled
// separately (any non-terminal state).
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:        {models.OrderStatusProcessing},
	models.OrderStatusProcessing:     {models.OrderStatusReadyForPickup},
	models.OrderStatusReadyForPickup: {},
	models.OrderStatusShipped:        {models.OrderStatusDelivered},
}

// OrderService owns the order ledger: checkout splitting, the status state
// machine, courier assignment, and the per-actor views over orders.
type OrderService struct {
	db          *gorm.DB
	notifier    *NotifierService
	logger      *zap.Logger
	platformFee decimal.Decimal
	shippingFee decimal.Decimal
}

// NewOrderService constructs OrderService. Fees are flat platform-level
// amounts added on top of the vendor subtotals at checkout.
func NewOrderService(db *gorm.DB, notifier *NotifierService, logger *zap.Logger, platformFee, shippingFee decimal.Decimal) *OrderService {
	return &OrderService{
		db:          db,
		notifier:    notifier,
		logger:      logger,
		platformFee: platformFee,
		shippingFee: shippingFee,
	}
}

// CustomerSnapshot is the buyer identity frozen onto the order.
type CustomerSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// AddressSnapshot is the shipping destination frozen onto the order.
type AddressSnapshot struct {
	Line     string `json:"line"`
	City     string `json:"city"`
	District string `json:"district"`
}

// CartItem is one priced line submitted at checkout.
type CartItem struct {
	VendorID  uuid.UUID       `json:"vendor_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// CreateOrderInput is everything CreateOrder needs from the checkout flow.
type CreateOrderInput struct {
	UserID        *uuid.UUID
	Customer      CustomerSnapshot
	Address       AddressSnapshot
	PaymentMethod string
	Items         []CartItem
}

// CreateOrder validates the cart, partitions it into per-vendor sub-orders
// and persists the whole order in one transaction. Every referenced vendor
// must exist and be approved.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if input.Customer.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}

	for i, item := range input.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has non-positive quantity", ErrValidation, i)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d has negative unit price", ErrValidation, i)
		}
		if item.Name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrValidation, i)
		}
	}

	// Partition by vendor, preserving first-appearance order.
	vendorIndex := make(map[uuid.UUID]int)
	var subOrders []models.VendorSubOrder
	for _, item := range input.Items {
		idx, ok := vendorIndex[item.VendorID]
		if !ok {
			idx = len(subOrders)
			vendorIndex[item.VendorID] = idx
			subOrders = append(subOrders, models.VendorSubOrder{
				VendorID: item.VendorID,
				Subtotal: decimal.Zero,
			})
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subOrders[idx].Items = append(subOrders[idx].Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Variant:   item.Variant,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		subOrders[idx].Subtotal = subOrders[idx].Subtotal.Add(lineTotal)
	}

	total := s.platformFee.Add(s.shippingFee)
	for _, sub := range subOrders {
		total = total.Add(sub.Subtotal)
	}

	order := models.Order{
		OrderNumber:         s.generateOrderNumber(),
		UserID:              input.UserID,
		Status:              models.OrderStatusPending,
		PaymentMethod:       input.PaymentMethod,
		PaymentStatus:       models.PaymentStatusPending,
		CustomerName:        input.Customer.Name,
		CustomerEmail:       input.Customer.Email,
		CustomerPhone:       input.Customer.Phone,
		ShippingAddressLine: input.Address.Line,
		ShippingCity:        input.Address.City,
		ShippingDistrict:    input.Address.District,
		PlatformFee:         s.platformFee,
		ShippingFee:         s.shippingFee,
		TotalAmount:         total,
		SubOrders:           subOrders,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for vendorID := range vendorIndex {
			var vendor models.Vendor
			if err := tx.First(&vendor, "id = ?", vendorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrVendorNotFound, vendorID)
				}
				return err
			}
			if vendor.Status != models.VendorStatusApproved {
				return fmt.Errorf("%w: vendor %s is not approved", ErrValidation, vendorID)
			}
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	if s.notifier != nil {
		go s.notifyNewOrder(order)
	}

	return &order, nil
}

// GetOrder fetches one order with its sub-orders and items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Preload("AssignedCourier").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("SubOrders.Items").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListUserOrders returns the orders placed by one customer account.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// GetVendorOrders returns the orders containing a sub-order for the vendor,
// resolved through the indexed vendor_id column. Sub-orders in the result
// are narrowed to the requesting vendor.
func (s *OrderService) GetVendorOrders(ctx context.Context, vendorID uuid.UUID) ([]models.Order, error) {
	var orderIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.VendorSubOrder{}).
		Where("vendor_id = ?", vendorID).
		Distinct().
		Pluck("order_id", &orderIDs).Error
	if err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return []models.Order{}, nil
	}

	var orders []models.Order
	err = s.db.WithContext(ctx).
		Preload("SubOrders", "vendor_id = ?", vendorID).
		Preload("SubOrders.Items").
		Where("id IN ?", orderIDs).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus applies one state-machine step. The write is guarded by
// the status the transition was validated against, so a concurrent writer
// cannot make the same step apply twice. Delivering an order also marks it
// paid, which flips every derived commission in it to paid.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !transitionAllowed(order.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}

		updates := map[string]interface{}{"status": next}
		if next == models.OrderStatusDelivered {
			updates["payment_status"] = models.PaymentStatusPaid
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
		}

		order.Status = next
		if next == models.OrderStatusDelivered {
			order.PaymentStatus = models.PaymentStatusPaid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(next).Inc()
	if next == models.OrderStatusDelivered && s.notifier != nil {
		go func(o models.Order) {
			if err := s.notifier.NotifyOrderDelivered(o.OrderNumber, o.TotalAmount); err != nil {
				s.logger.Warn("delivered notification failed", zap.Error(err))
			}
		}(order)
	}

	return &order, nil
}

// ClaimForDelivery atomically moves a ready_for_pickup order to shipped and
// assigns the courier. The compare-and-set guarantees exactly one of two
// racing couriers wins; the loser gets ErrAlreadyAssigned.
func (s *OrderService) ClaimForDelivery(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error) {
	var courier models.Courier
	if err := s.db.WithContext(ctx).First(&courier, "id = ?", courierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourierNotFound
		}
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND assigned_courier_id IS NULL",
			orderID, models.OrderStatusReadyForPickup).
		Updates(map[string]interface{}{
			"status":              models.OrderStatusShipped,
			"assigned_courier_id": courierID,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var order models.Order
		if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}

		if order.AssignedCourierID != nil {
			metrics.ClaimConflicts.Inc()
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderStatusShipped)
	}

	metrics.StatusTransitions.WithLabelValues(models.OrderStatusShipped).Inc()
	return s.GetOrder(ctx, orderID)
}

// CancelOrder cancels any non-terminal order. There are no compensating
// entries: delivered commissions stay counted and nothing is refunded.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if models.IsTerminalStatus(order.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderStatusCancelled)
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Update("status", models.OrderStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
		}

		order.Status = models.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(models.OrderStatusCancelled).Inc()
	return &order, nil
}

// ListDeliveryQueue returns orders waiting for a courier.
func (s *OrderService) ListDeliveryQueue(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Where("status = ?", models.OrderStatusReadyForPickup).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// ListCourierOrders returns the orders a courier has claimed.
func (s *OrderService) ListCourierOrders(ctx context.Context, courierID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Where("assigned_courier_id = ?", courierID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

func (s *OrderService) notifyNewOrder(order models.Order) {
	notification := NewOrderNotification{
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		VendorCount:   len(order.SubOrders),
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
	}
	for _, sub := range order.SubOrders {
		for _, item := range sub.Items {
			notification.Items = append(notification.Items, ItemNotification{
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}

	if err := s.notifier.NotifyNewOrder(notification); err != nil {
		s.logger.Warn("order notification failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

func (s *OrderService) generateOrderNumber() string {
	return fmt.Sprintf("BZ-%09d", time.Now().UnixNano()%1_000_000_000)
}

func transitionAllowed(from, next string) bool {
	if next == models.OrderStatusCancelled {
		return !models.IsTerminalStatus(from)
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == next {
			return true
		}
	}
	return false
}
