package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/database"

	"github.com/gofiber/fiber/v2"
)

func queryDays(c *fiber.Ctx, cfg *config.Config) (int, error) {
	days := c.QueryInt("days", cfg.ReportDefaultDays)
	if days <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "days must be positive")
	}
	return days, nil
}

type workbook interface {
	XLSX() (*bytes.Buffer, error)
}

// send renders data as JSON, or as a workbook download with ?format=xlsx.
func send(c *fiber.Ctx, name string, now time.Time, data workbook) error {
	switch c.Query("format", "json") {
	case "json":
		return c.JSON(data)
	case "xlsx":
		buf, err := data.XLSX()
		if err != nil {
			return apierror.From(err, "", "workbook could not be created")
		}
		c.Attachment(fmt.Sprintf("%s-%s.xlsx", name, now.Format("20060102")))
		c.Set(fiber.HeaderContentType, XLSXContentType)
		return c.Send(buf.Bytes())
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be json or xlsx")
	}
}

// GET /api/procurement/reports?days=30
func ProcurementReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := queryDays(c, cfg)
		if err != nil {
			return err
		}
		now := time.Now().UTC()

		summary, err := ProcurementSummary(database.DB, days, now)
		if err != nil {
			return apierror.From(err, "", "procurement summary failed")
		}
		top, err := TopSuppliersByValue(database.DB, days, DefaultTopSuppliers, now)
		if err != nil {
			return apierror.From(err, "", "top suppliers could not be ranked")
		}
		overTime, err := OrdersOverTime(database.DB, days, now)
		if err != nil {
			return apierror.From(err, "", "order history failed")
		}

		return c.JSON(fiber.Map{
			"days":             days,
			"summary":          summary,
			"top_suppliers":    top,
			"orders_over_time": overTime,
		})
	}
}

// GET /api/reports
func AnalyticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := BuildAnalytics(database.DB)
		if err != nil {
			return apierror.From(err, "", "analytics could not be built")
		}
		return c.JSON(a)
	}
}

// GET /api/dashboard
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := auth.CurrentUser(c)
		d, err := BuildDashboard(database.DB, userID, time.Now().UTC())
		if err != nil {
			return apierror.From(err, "", "dashboard could not be built")
		}
		return c.JSON(d)
	}
}

// GET /api/export/low-stock?format=json|xlsx
func ExportLowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		data, err := LowStockData(database.DB, now)
		if err != nil {
			return apierror.From(err, "", "low stock export failed")
		}
		return send(c, "low-stock", now, data)
	}
}

// GET /api/export/supplier-performance?supplier_id=&format=json|xlsx
func ExportSupplierPerformanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID := c.QueryInt("supplier_id", 0)
		if supplierID < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid supplier_id")
		}
		now := time.Now().UTC()
		data, err := SupplierPerformanceData(database.DB, uint(supplierID), now)
		if err != nil {
			return apierror.From(err, "supplier not found", "supplier performance export failed")
		}
		return send(c, "supplier-performance", now, data)
	}
}

// GET /api/export/procurement-report?days=30&format=json|xlsx
func ExportProcurementReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := queryDays(c, cfg)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		data, err := ProcurementReportData(database.DB, days, now)
		if err != nil {
			return apierror.From(err, "", "procurement report export failed")
		}
		return send(c, "procurement-report", now, data)
	}
}

// GET /api/export/dashboard?format=json|xlsx
func ExportDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		data, err := DashboardData(database.DB, now)
		if err != nil {
			return apierror.From(err, "", "dashboard export failed")
		}
		return send(c, "dashboard", now, data)
	}
}
