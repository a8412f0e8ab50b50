package supplier

import (
	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SupplierResponse struct {
	models.Supplier
	PerformanceScore  decimal.Decimal          `json:"performance_score"`
	PerformanceStatus models.PerformanceStatus `json:"performance_status"`
}

func NewSupplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		Supplier:          s,
		PerformanceScore:  s.PerformanceScore(),
		PerformanceStatus: s.PerformanceStatus(),
	}
}

type EvaluateRequest struct {
	Rating *decimal.Decimal `json:"rating"`
	Notes  string           `json:"notes"`
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// GET /api/suppliers?search=&active=true&page=
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := ListSuppliers(database.DB, c.Query("search"), c.Query("active") == "true")

		page := pagination.Parse(c)
		var total int64
		var suppliers []models.Supplier
		if err := page.Apply(q, &total).Find(&suppliers).Error; err != nil {
			return apierror.From(err, "", "suppliers could not be listed")
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			res = append(res, NewSupplierResponse(s))
		}
		return c.JSON(page.Wrap(res, total))
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var s models.Supplier
		if err := database.DB.First(&s, id).Error; err != nil {
			return apierror.From(err, "supplier not found", "supplier could not be loaded")
		}
		perf, err := PerformanceData(database.DB, &s)
		if err != nil {
			return apierror.From(err, "", "performance data could not be loaded")
		}
		return c.JSON(fiber.Map{
			"supplier":    NewSupplierResponse(s),
			"performance": perf,
		})
	}
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		s, err := CreateSupplier(database.DB, audit.ActorFrom(c), body)
		if err != nil {
			return apierror.From(err, "", "supplier could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(NewSupplierResponse(*s))
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body SupplierInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		s, err := UpdateSupplier(database.DB, audit.ActorFrom(c), id, body)
		if err != nil {
			return apierror.From(err, "supplier not found", "supplier could not be updated")
		}
		return c.JSON(NewSupplierResponse(*s))
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := DeleteSupplier(database.DB, audit.ActorFrom(c), id); err != nil {
			return apierror.From(err, "supplier not found", "supplier could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/suppliers/:id/evaluate
func EvaluateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body EvaluateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Rating == nil {
			return fiber.NewError(fiber.StatusBadRequest, "rating is required")
		}

		eval, err := AddEvaluation(database.DB, id, *body.Rating, body.Notes, auth.CurrentUserID(c))
		if err != nil {
			return apierror.From(err, "supplier not found", "evaluation could not be saved")
		}

		var s models.Supplier
		if err := database.DB.First(&s, id).Error; err != nil {
			return apierror.From(err, "supplier not found", "supplier could not be loaded")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Evaluation added successfully.",
			"evaluation": eval,
			"supplier":   NewSupplierResponse(s),
		})
	}
}

// GET /api/suppliers/:id/evaluations
func ListEvaluationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := database.DB.Select("id").First(&models.Supplier{}, id).Error; err != nil {
			return apierror.From(err, "supplier not found", "supplier could not be loaded")
		}
		evals, err := Evaluations(database.DB, id)
		if err != nil {
			return apierror.From(err, "", "evaluations could not be listed")
		}
		return c.JSON(evals)
	}
}
