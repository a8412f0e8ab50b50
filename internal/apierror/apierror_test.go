package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &models.ValidationError{Field: "rating", Message: "out of range"}, fiber.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), fiber.StatusNotFound},
		{"conflict", fmt.Errorf("%w: status", ErrConflict), fiber.StatusConflict},
		{"stock", fmt.Errorf("out: %w", models.ErrInsufficientStock), fiber.StatusConflict},
		{"fiber passthrough", fiber.NewError(fiber.StatusForbidden, "no"), fiber.StatusForbidden},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ferr *fiber.Error
			assert.True(t, errors.As(From(tt.err, "missing", "failed"), &ferr))
			assert.Equal(t, tt.code, ferr.Code)
		})
	}
	assert.NoError(t, From(nil, "missing", "failed"))
}
