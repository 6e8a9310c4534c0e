package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ShopName  string `json:"shop_name"`
	Vehicle   string `json:"vehicle"`
}

// Register creates an account for a customer, vendor or courier. Vendor
// registration also creates the vendor entity in pending status awaiting
// admin approval; courier registration creates the courier entity. Admin
// accounts are seeded from configuration, never registered.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Password == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	switch role {
	case models.RoleCustomer, models.RoleVendor, models.RoleCourier:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "role must be customer, vendor or courier")
	}

	var existing models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		DisplayName:  fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		PasswordHash: passwordHash,
		Role:         role,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		switch role {
		case models.RoleVendor:
			shopName := req.ShopName
			if shopName == "" {
				shopName = user.DisplayName
			}
			vendor := models.Vendor{
				Name:   shopName,
				Phone:  req.Phone,
				Status: models.VendorStatusPending,
			}
			if err := tx.Create(&vendor).Error; err != nil {
				return err
			}
			user.VendorID = &vendor.ID
		case models.RoleCourier:
			courier := models.Courier{
				Name:    user.DisplayName,
				Phone:   req.Phone,
				Vehicle: req.Vehicle,
			}
			if err := tx.Create(&courier).Error; err != nil {
				return err
			}
			user.CourierID = &courier.ID
		}

		return tx.Create(&user).Error
	})
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"phone":        user.Phone,
			"display_name": user.DisplayName,
			"role":         user.Role,
			"vendor_id":    user.VendorID,
			"courier_id":   user.CourierID,
		},
		"token": token,
	})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"phone":        user.Phone,
			"role":         user.Role,
		},
		"token": token,
	})
}
