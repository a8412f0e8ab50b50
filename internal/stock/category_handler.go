package stock

import (
	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := ListCategories(database.DB)
		if err != nil {
			return apierror.From(err, "", "categories could not be listed")
		}
		return c.JSON(categories)
	}
}

// GET /api/categories/:id
func GetCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var cat models.Category
		if err := database.DB.First(&cat, id).Error; err != nil {
			return apierror.From(err, "category not found", "category could not be loaded")
		}
		var productCount int64
		if err := database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
			return apierror.From(err, "", "category could not be loaded")
		}
		return c.JSON(fiber.Map{"category": cat, "product_count": productCount})
	}
}

// POST /api/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		cat, err := CreateCategory(database.DB, audit.ActorFrom(c), body)
		if err != nil {
			return apierror.From(err, "", "category could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body CategoryInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		cat, err := UpdateCategory(database.DB, audit.ActorFrom(c), id, body)
		if err != nil {
			return apierror.From(err, "category not found", "category could not be updated")
		}
		return c.JSON(cat)
	}
}

// DELETE /api/categories/:id
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := DeleteCategory(database.DB, audit.ActorFrom(c), id); err != nil {
			return apierror.From(err, "category not found", "category could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
