package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
)

// VendorHandler serves the vendor dashboard: own orders, fulfilment
// progress, derived earnings and settlement history.
type VendorHandler struct {
	db          *gorm.DB
	orders      *services.OrderService
	earnings    *services.EarningsService
	settlements *services.SettlementService
}

// NewVendorHandler constructs VendorHandler.
func NewVendorHandler(db *gorm.DB, orders *services.OrderService, earnings *services.EarningsService, settlements *services.SettlementService) *VendorHandler {
	return &VendorHandler{db: db, orders: orders, earnings: earnings, settlements: settlements}
}

func (h *VendorHandler) currentVendorID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if user.VendorID == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "account is not linked to a vendor")
	}

	return *user.VendorID, nil
}

// ListOrders returns orders containing a sub-order for this vendor, with
// sub-orders narrowed to the vendor's own.
func (h *VendorHandler) ListOrders(c *fiber.Ctx) error {
	vendorID, err := h.currentVendorID(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.GetVendorOrders(c.Context(), vendorID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

type vendorStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus lets a vendor move an order to processing or mark it
// ready for pickup. Other transitions belong to admins and couriers.
func (h *VendorHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	vendorID, err := h.currentVendorID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req vendorStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status != models.OrderStatusProcessing && req.Status != models.OrderStatusReadyForPickup {
		return fiber.NewError(fiber.StatusForbidden, "vendors may only mark orders processing or ready_for_pickup")
	}

	var count int64
	if err := h.db.Model(&models.VendorSubOrder{}).
		Where("order_id = ? AND vendor_id = ?", orderID, vendorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	order, err := h.orders.UpdateOrderStatus(c.Context(), orderID, req.Status)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Earnings returns the vendor's commissions and pending/paid summary,
// recomputed from the ledger on every call.
func (h *VendorHandler) Earnings(c *fiber.Ctx) error {
	vendorID, err := h.currentVendorID(c)
	if err != nil {
		return err
	}

	commissions, err := h.earnings.VendorCommissions(c.Context(), vendorID)
	if err != nil {
		return mapServiceError(err)
	}

	summary, err := h.earnings.VendorEarningsSummary(c.Context(), vendorID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"summary":     summary,
			"commissions": commissions,
		},
	})
}

// Settlements returns the vendor's payout history.
func (h *VendorHandler) Settlements(c *fiber.Ctx) error {
	vendorID, err := h.currentVendorID(c)
	if err != nil {
		return err
	}

	settlements, err := h.settlements.ListSettlements(c.Context(), vendorID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": settlements})
}
