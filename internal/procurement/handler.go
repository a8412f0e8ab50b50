package procurement

import (
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderRequest struct {
	OrderNumber          string             `json:"order_number"`
	SupplierID           uint               `json:"supplier_id"`
	Status               models.OrderStatus `json:"status"`
	OrderDate            string             `json:"order_date"`             // "2026-01-31", optional
	ExpectedDeliveryDate string             `json:"expected_delivery_date"` // optional
	Notes                string             `json:"notes"`
	Items                []ItemInput        `json:"items"`
}

type UpdateOrderRequest struct {
	Notes                *string     `json:"notes"`
	ExpectedDeliveryDate *string     `json:"expected_delivery_date"`
	Items                []ItemInput `json:"items"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type OrderResponse struct {
	models.ProcurementOrder
	SupplierName string `json:"supplier_name"`
	StatusLabel  string `json:"status_label"`
	IsOverdue    bool   `json:"is_overdue"`
}

func NewOrderResponse(o models.ProcurementOrder, now time.Time) OrderResponse {
	return OrderResponse{
		ProcurementOrder: o,
		SupplierName:     o.Supplier.Name,
		StatusLabel:      o.Status.Label(),
		IsOverdue:        o.IsOverdue(now),
	}
}

// parseDate accepts "2006-01-02" or RFC 3339.
func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, field+" must be YYYY-MM-DD")
	}
	return &t, nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// GET /api/procurement?status=PENDING&search=&page=
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.OrderStatus(c.Query("status"))
		if status != "" && !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status")
		}
		q := ListOrders(database.DB, OrderFilter{Status: status, Search: c.Query("search")})

		page := pagination.Parse(c)
		var total int64
		var orders []models.ProcurementOrder
		if err := page.Apply(q, &total).Preload("Supplier").Find(&orders).Error; err != nil {
			return apierror.From(err, "", "orders could not be listed")
		}

		now := time.Now()
		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, NewOrderResponse(o, now))
		}
		return c.JSON(fiber.Map{
			"orders":   page.Wrap(res, total),
			"statuses": models.OrderStatuses(),
		})
	}
}

// GET /api/procurement/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var o models.ProcurementOrder
		if err := database.DB.Preload("Supplier").Preload("Items").First(&o, id).Error; err != nil {
			return apierror.From(err, "order not found", "order could not be loaded")
		}
		return c.JSON(NewOrderResponse(o, time.Now()))
	}
}

// POST /api/procurement
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		orderDate, err := parseDate("order_date", body.OrderDate)
		if err != nil {
			return err
		}
		expected, err := parseDate("expected_delivery_date", body.ExpectedDeliveryDate)
		if err != nil {
			return err
		}

		now := time.Now()
		o, err := CreateOrder(database.DB, OrderInput{
			OrderNumber:          body.OrderNumber,
			SupplierID:           body.SupplierID,
			Status:               body.Status,
			OrderDate:            orderDate,
			ExpectedDeliveryDate: expected,
			Notes:                body.Notes,
			Items:                body.Items,
			CreatedByID:          auth.CurrentUserID(c),
		}, now)
		if err != nil {
			return apierror.From(err, "", "order could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(NewOrderResponse(*o, now))
	}
}

// PUT /api/procurement/:id
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		in := UpdateInput{Notes: body.Notes, Items: body.Items}
		if body.ExpectedDeliveryDate != nil {
			if in.ExpectedDeliveryDate, err = parseDate("expected_delivery_date", *body.ExpectedDeliveryDate); err != nil {
				return err
			}
		}

		o, err := UpdateOrder(database.DB, id, in)
		if err != nil {
			return apierror.From(err, "order not found", "order could not be updated")
		}
		return c.JSON(NewOrderResponse(*o, time.Now()))
	}
}

// POST /api/procurement/:id/status
func ChangeStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		now := time.Now()
		o, err := ChangeStatus(database.DB, id, body.Status, auth.CurrentUserID(c), now)
		if err != nil {
			return apierror.From(err, "order not found", "status could not be changed")
		}
		return c.JSON(NewOrderResponse(*o, now))
	}
}

// GET /api/procurement/overdue
func OverdueOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		orders, err := OverdueOrders(database.DB, now)
		if err != nil {
			return apierror.From(err, "", "overdue orders could not be listed")
		}
		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, NewOrderResponse(o, now))
		}
		return c.JSON(res)
	}
}

// POST /api/stock/low-stock/reorder
func ReorderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := ReorderFromSuggestions(database.DB, auth.CurrentUserID(c), time.Now())
		if err != nil {
			return apierror.From(err, "", "reorder drafts could not be created")
		}
		status := fiber.StatusOK
		if len(res.Orders) > 0 {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(res)
	}
}
