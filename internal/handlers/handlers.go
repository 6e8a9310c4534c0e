package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/services"
)

// mapServiceError translates service-level errors onto HTTP statuses.
// Unknown errors pass through to the Fiber error handler as 500s.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrVendorNotFound),
		errors.Is(err, services.ErrCourierNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyAssigned):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidRate),
		errors.Is(err, services.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
