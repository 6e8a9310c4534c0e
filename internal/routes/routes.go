package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	notifier := services.NewNotifierService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)

	vendorService := services.NewVendorService(db)
	orderService := services.NewOrderService(db, notifier, log, cfg.PlatformFee, cfg.ShippingFee)
	earningsService := services.NewEarningsService(db, vendorService)
	settlementService := services.NewSettlementService(db, earningsService, vendorService, notifier, log)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, orderService)
	vendorHandler := handlers.NewVendorHandler(db, orderService, earningsService, settlementService)
	deliveryHandler := handlers.NewDeliveryHandler(db, orderService)
	adminHandler := handlers.NewAdminHandler(db, orderService, vendorService, earningsService, settlementService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Customer storefront
	protected := api.Group("", middleware.AuthMiddleware(cfg))
	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	// Vendor dashboard
	vendor := api.Group("/vendor", middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleVendor))
	vendor.Get("/orders", vendorHandler.ListOrders)
	vendor.Patch("/orders/:id/status", vendorHandler.UpdateOrderStatus)
	vendor.Get("/earnings", vendorHandler.Earnings)
	vendor.Get("/settlements", vendorHandler.Settlements)

	// Delivery app
	delivery := api.Group("/delivery", middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleCourier))
	delivery.Get("/queue", deliveryHandler.Queue)
	delivery.Get("/orders", deliveryHandler.MyOrders)
	delivery.Post("/orders/:id/claim", deliveryHandler.Claim)
	delivery.Patch("/orders/:id/delivered", deliveryHandler.MarkDelivered)

	// Admin console
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Patch("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Post("/vendors", adminHandler.CreateVendor)
	admin.Get("/vendors", adminHandler.ListVendors)
	admin.Get("/vendors/:id", adminHandler.GetVendor)
	admin.Patch("/vendors/:id/commission-rate", adminHandler.SetVendorRate)
	admin.Patch("/vendors/:id/status", adminHandler.SetVendorStatus)
	admin.Get("/vendors/:id/earnings", adminHandler.VendorEarnings)
	admin.Get("/vendors/:id/settlements", adminHandler.ListSettlements)
	admin.Post("/settlements", adminHandler.RecordSettlement)
}
