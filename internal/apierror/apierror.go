// Package apierror maps service errors onto HTTP responses.
package apierror

import (
	"errors"
	"log"

	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrConflict marks errors that should surface as 409.
var ErrConflict = errors.New("conflict")

// Handler is the application-wide fiber error handler.
func Handler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Println("Unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "unexpected server error",
	})
}

// From converts a service error into a *fiber.Error. notFound is the message
// used for missing records; fallback is used for unexpected failures, which
// are logged.
func From(err error, notFound, fallback string) error {
	if err == nil {
		return nil
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr
	}
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFound)
	case errors.Is(err, ErrConflict), errors.Is(err, models.ErrInsufficientStock), errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	log.Printf("%s: %v", fallback, err)
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
