package auth

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// POST /api/auth/register
// The first account becomes admin, every later one staff.
func RegisterHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
		}
		if _, err := mail.ParseAddress(body.Email); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email")
		}
		if len(body.Password) < minPasswordLength {
			return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
		}

		var existing models.User
		err := database.DB.Where("email = ?", body.Email).First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check email")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleStaff,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				user.Role = models.RoleAdmin
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(&user),
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(&user),
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := CurrentUser(c)

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return c.JSON(toUserResponse(&user))
	}
}
