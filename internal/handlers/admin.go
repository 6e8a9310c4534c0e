package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// AdminHandler manages the admin console: vendor registry, the full order
// ledger, settlements and dashboard aggregates.
type AdminHandler struct {
	db          *gorm.DB
	orders      *services.OrderService
	vendors     *services.VendorService
	earnings    *services.EarningsService
	settlements *services.SettlementService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService, vendors *services.VendorService, earnings *services.EarningsService, settlements *services.SettlementService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders, vendors: vendors, earnings: earnings, settlements: settlements}
}

type createVendorRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	CommissionRate string `json:"commission_rate"`
}

// CreateVendor registers a vendor directly from the admin console.
func (h *AdminHandler) CreateVendor(c *fiber.Ctx) error {
	var req createVendorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	vendor := models.Vendor{
		Name:   req.Name,
		Phone:  req.Phone,
		Status: req.Status,
	}
	if req.CommissionRate != "" {
		rate, err := decimal.NewFromString(req.CommissionRate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid commission rate")
		}
		vendor.CommissionRate = rate
	}

	if err := h.vendors.CreateVendor(c.Context(), &vendor); err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": vendor})
}

// ListVendors returns all vendors, optionally filtered by status.
func (h *AdminHandler) ListVendors(c *fiber.Ctx) error {
	vendors, err := h.vendors.ListVendors(c.Context(), c.Query("status"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vendors})
}

// GetVendor returns a single vendor.
func (h *AdminHandler) GetVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	vendor, err := h.vendors.GetVendor(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": vendor})
}

type commissionRateRequest struct {
	CommissionRate string `json:"commission_rate"`
}

// SetVendorRate changes a vendor's commission rate. The new rate applies
// retroactively to every derived commission, delivered orders included.
func (h *AdminHandler) SetVendorRate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req commissionRateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rate, err := decimal.NewFromString(req.CommissionRate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid commission rate")
	}

	vendor, err := h.vendors.SetCommissionRate(c.Context(), id, rate)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": vendor})
}

type vendorStatusUpdateRequest struct {
	Status string `json:"status"`
}

// SetVendorStatus moves a vendor between pending, approved and suspended.
func (h *AdminHandler) SetVendorStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req vendorStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	vendor, err := h.vendors.SetStatus(c.Context(), id, req.Status)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": vendor})
}

// VendorEarnings returns the derived earnings view for any vendor.
func (h *AdminHandler) VendorEarnings(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	commissions, err := h.earnings.VendorCommissions(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	summary, err := h.earnings.VendorEarningsSummary(c.Context(), id)
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

// ListAllOrders returns the full ledger with pagination and status filter.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	orders, total, err := h.orders.ListOrders(c.Context(), c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type orderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus applies any legal transition, including cancellation.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order *models.Order
	if req.Status == models.OrderStatusCancelled {
		order, err = h.orders.CancelOrder(c.Context(), id)
	} else {
		order, err = h.orders.UpdateOrderStatus(c.Context(), id, req.Status)
	}
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type recordSettlementRequest struct {
	VendorID      string  `json:"vendor_id"`
	Amount        string  `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID *string `json:"transaction_id"`
}

// RecordSettlement appends a payout for a vendor.
func (h *AdminHandler) RecordSettlement(c *fiber.Ctx) error {
	var req recordSettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid vendor id")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid amount")
	}

	settlement, err := h.settlements.RecordSettlement(c.Context(), vendorID, amount, req.PaymentMethod, req.TransactionID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": settlement})
}

// ListSettlements returns a vendor's payout history.
func (h *AdminHandler) ListSettlements(c *fiber.Ctx) error {
	vendorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	settlements, err := h.settlements.ListSettlements(c.Context(), vendorID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": settlements})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalVendors int64
	if err := h.db.Model(&models.Vendor{}).Count(&totalVendors).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	// Gross volume over non-cancelled orders.
	var grossVolume decimal.Decimal
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&grossVolume).Error; err != nil {
		return err
	}

	var settledTotal decimal.Decimal
	if err := h.db.Model(&models.Settlement{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&settledTotal).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_vendors":    totalVendors,
			"total_orders":     totalOrders,
			"orders_by_status": ordersByStatus,
			"gross_volume":     grossVolume,
			"settled_total":    settledTotal,
		},
	})
}
