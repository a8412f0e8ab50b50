package stock

import (
	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	models.Product
	StockStatus models.StockStatus `json:"stock_status"`
	IsLowStock  bool               `json:"is_low_stock"`
	TotalValue  decimal.Decimal    `json:"total_value"`
}

func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Product:     p,
		StockStatus: p.StockStatus(),
		IsLowStock:  p.IsLowStock(),
		TotalValue:  p.TotalValue(),
	}
}

func productResponses(products []models.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, NewProductResponse(p))
	}
	return res
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// GET /api/stock?search=&status=low|out&category_id=&page=
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := ListProducts(database.DB, ProductFilter{
			Search:     c.Query("search"),
			Status:     c.Query("status"),
			CategoryID: uint(max(c.QueryInt("category_id"), 0)),
		})

		page := pagination.Parse(c)
		var total int64
		var products []models.Product
		if err := page.Apply(q, &total).Preload("Category").Find(&products).Error; err != nil {
			return apierror.From(err, "", "products could not be listed")
		}
		return c.JSON(page.Wrap(productResponses(products), total))
	}
}

// GET /api/stock/:id
// Includes the product's ten latest stock transactions.
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.Preload("Category").First(&p, id).Error; err != nil {
			return apierror.From(err, "product not found", "product could not be loaded")
		}

		var recent []models.StockTransaction
		if err := database.DB.Where("product_id = ?", id).Order("created_at desc").Order("id desc").Limit(10).Find(&recent).Error; err != nil {
			return apierror.From(err, "", "transactions could not be loaded")
		}

		return c.JSON(fiber.Map{
			"product":             NewProductResponse(p),
			"recent_transactions": recent,
		})
	}
}

// POST /api/stock
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		p, err := CreateProduct(database.DB, audit.ActorFrom(c), body)
		if err != nil {
			return apierror.From(err, "", "product could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(NewProductResponse(*p))
	}
}

// PUT /api/stock/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body ProductInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		p, err := UpdateProduct(database.DB, audit.ActorFrom(c), id, body)
		if err != nil {
			return apierror.From(err, "product not found", "product could not be updated")
		}
		return c.JSON(NewProductResponse(*p))
	}
}

// DELETE /api/stock/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := DeleteProduct(database.DB, audit.ActorFrom(c), id); err != nil {
			return apierror.From(err, "product not found", "product could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/stock/low-stock-dashboard
func LowStockDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		low, err := LowStockProducts(database.DB)
		if err != nil {
			return apierror.From(err, "", "low stock products could not be listed")
		}
		out, err := OutOfStockProducts(database.DB)
		if err != nil {
			return apierror.From(err, "", "out of stock products could not be listed")
		}
		suggestions, err := LowStockSuggestions(database.DB)
		if err != nil {
			return apierror.From(err, "", "suggestions could not be built")
		}
		return c.JSON(fiber.Map{
			"low_stock_products":    productResponses(low),
			"out_of_stock_products": productResponses(out),
			"suggestions":           suggestions,
		})
	}
}
