package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
)

// DeliveryHandler serves the courier app: the pickup queue, claiming and
// completing deliveries.
type DeliveryHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(db *gorm.DB, orders *services.OrderService) *DeliveryHandler {
	return &DeliveryHandler{db: db, orders: orders}
}

func (h *DeliveryHandler) currentCourierID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if user.CourierID == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "account is not linked to a courier")
	}

	return *user.CourierID, nil
}

// Queue lists orders awaiting pickup.
func (h *DeliveryHandler) Queue(c *fiber.Ctx) error {
	orders, err := h.orders.ListDeliveryQueue(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// Claim atomically assigns the order to the calling courier. A courier who
// loses the race gets a conflict and should refresh the queue.
func (h *DeliveryHandler) Claim(c *fiber.Ctx) error {
	courierID, err := h.currentCourierID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.ClaimForDelivery(c.Context(), orderID, courierID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// MarkDelivered completes a delivery the courier owns. Delivering flips the
// order's derived commissions to paid for every vendor in it.
func (h *DeliveryHandler) MarkDelivered(c *fiber.Ctx) error {
	courierID, err := h.currentCourierID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.GetOrder(c.Context(), orderID)
	if err != nil {
		return mapServiceError(err)
	}
	if order.AssignedCourierID == nil || *order.AssignedCourierID != courierID {
		return fiber.NewError(fiber.StatusForbidden, "order is not assigned to this courier")
	}

	updated, err := h.orders.UpdateOrderStatus(c.Context(), orderID, models.OrderStatusDelivered)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// MyOrders lists the orders this courier has claimed.
func (h *DeliveryHandler) MyOrders(c *fiber.Ctx) error {
	courierID, err := h.currentCourierID(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListCourierOrders(c.Context(), courierID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}
