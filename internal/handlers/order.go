package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
)

// OrderHandler manages the customer-facing order endpoints.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type orderItemRequest struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Variant   string `json:"variant"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Address struct {
		Line     string `json:"line"`
		City     string `json:"city"`
		District string `json:"district"`
	} `json:"address"`
	PaymentMethod string             `json:"payment_method"`
	Items         []orderItemRequest `json:"items"`
}

// CreateOrder performs checkout: the cart is split per vendor and the order
// is written with immutable customer and address snapshots.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input := services.CreateOrderInput{
		UserID: &userID,
		Customer: services.CustomerSnapshot{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Address: services.AddressSnapshot{
			Line:     req.Address.Line,
			City:     req.Address.City,
			District: req.Address.District,
		},
		PaymentMethod: req.PaymentMethod,
	}

	// Fall back to the account profile when no snapshot was submitted.
	if input.Customer.Name == "" {
		var user models.User
		if err := h.db.First(&user, "id = ?", userID).Error; err == nil {
			input.Customer.Name = user.DisplayName
			input.Customer.Email = user.Email
			input.Customer.Phone = user.Phone
		}
	}

	for _, item := range req.Items {
		vendorID, err := uuid.Parse(item.VendorID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid vendor id")
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid unit price")
		}

		input.Items = append(input.Items, services.CartItem{
			VendorID:  vendorID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Variant:   item.Variant,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(c.Context(), input)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// ListOrders returns the authenticated customer's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.orders.ListUserOrders(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetOrder returns a single order. Customers can only read their own;
// admins can read any.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.GetOrder(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	role, _ := middleware.GetCurrentUserRole(c)
	if role != models.RoleAdmin && (order.UserID == nil || *order.UserID != userID) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
