package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/logger"
	"github.com/example/bazaar/internal/metrics"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/routes"
	"github.com/example/bazaar/internal/utils"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db := database.Connect(cfg.DatabaseURL)

	if err := seedAdmin(db, cfg); err != nil {
		zapLogger.Fatal("failed to seed admin account", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName: "Bazaar Marketplace Core",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.Middleware())

	routes.Register(app, db, cfg, zapLogger)

	go func() {
		zapLogger.Info("metrics listener starting", zap.String("port", cfg.MetricsPort))
		if err := metrics.Serve(cfg.MetricsPort); err != nil {
			zapLogger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	zapLogger.Info("server starting", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zapLogger.Fatal("fiber.Listen error", zap.Error(err))
	}
}

// seedAdmin creates the admin account from configuration if it does not
// exist yet. Admin accounts cannot be registered through the API.
func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminPhone == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("phone = ?", cfg.AdminPhone).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		FirstName:    "Admin",
		DisplayName:  "Admin",
		Phone:        cfg.AdminPhone,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	return db.Create(&admin).Error
}
