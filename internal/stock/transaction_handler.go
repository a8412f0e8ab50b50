package stock

import (
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

type CreateTransactionRequest struct {
	Type            models.TransactionType `json:"transaction_type"`
	Quantity        int                    `json:"quantity"`
	ReferenceNumber string                 `json:"reference_number"`
	Notes           string                 `json:"notes"`
}

type CreateParityRequest struct {
	ProductID      uint   `json:"product_id"`
	ActualQuantity *int   `json:"actual_quantity"`
	Reason         string `json:"reason"`
}

type ResolveParityRequest struct {
	AdjustStock bool `json:"adjust_stock"`
}

// GET /api/stock/:id/transactions?type=IN&page=
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := database.DB.Select("id").First(&models.Product{}, id).Error; err != nil {
			return apierror.From(err, "product not found", "product could not be loaded")
		}

		dbq := database.DB.Model(&models.StockTransaction{}).Where("product_id = ?", id)
		if t := models.TransactionType(c.Query("type")); t != "" {
			dbq = dbq.Where("transaction_type = ?", t)
		}

		page := pagination.Parse(c)
		var total int64
		var items []models.StockTransaction
		if err := page.Apply(dbq.Order("created_at desc").Order("id desc"), &total).Find(&items).Error; err != nil {
			return apierror.From(err, "", "transactions could not be listed")
		}
		return c.JSON(page.Wrap(items, total))
	}
}

// POST /api/stock/:id/transactions
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		t, err := RecordTransaction(database.DB, Movement{
			ProductID:       id,
			Type:            body.Type,
			Quantity:        body.Quantity,
			ReferenceNumber: body.ReferenceNumber,
			Notes:           body.Notes,
			UserID:          auth.CurrentUserID(c),
		})
		if err != nil {
			return apierror.From(err, "product not found", "stock transaction could not be recorded")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"transaction": t,
			"product":     NewProductResponse(t.Product),
		})
	}
}

// GET /api/stock/parity?resolved=true
func ListParitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockParity{}).Where("resolved = ?", c.Query("resolved") == "true")

		page := pagination.Parse(c)
		var total int64
		var items []models.StockParity
		if err := page.Apply(dbq.Order("created_at desc"), &total).Preload("Product").Find(&items).Error; err != nil {
			return apierror.From(err, "", "stock parities could not be listed")
		}
		return c.JSON(page.Wrap(items, total))
	}
}

// POST /api/stock/parity
func CreateParityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateParityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.ProductID == 0 || body.ActualQuantity == nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id and actual_quantity are required")
		}

		p, err := RecordParity(database.DB, body.ProductID, *body.ActualQuantity, body.Reason)
		if err != nil {
			return apierror.From(err, "product not found", "stock parity could not be recorded")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// POST /api/stock/parity/:id/resolve
func ResolveParityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body ResolveParityRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}

		p, adj, err := ResolveParity(database.DB, id, auth.CurrentUserID(c), body.AdjustStock, time.Now())
		if err != nil {
			return apierror.From(err, "stock parity not found", "stock parity could not be resolved")
		}
		return c.JSON(fiber.Map{
			"message":    "Stock parity resolved.",
			"parity":     p,
			"adjustment": adj,
		})
	}
}
