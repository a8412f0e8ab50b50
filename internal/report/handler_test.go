package report

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newApp() *fiber.App {
	cfg := &config.Config{ReportDefaultDays: 30}
	app := fiber.New(fiber.Config{ErrorHandler: apierror.Handler})
	app.Get("/dashboard", DashboardHandler())
	app.Get("/reports", AnalyticsHandler())
	app.Get("/procurement/reports", ProcurementReportHandler(cfg))
	app.Get("/export/low-stock", ExportLowStockHandler())
	app.Get("/export/supplier-performance", ExportSupplierPerformanceHandler())
	app.Get("/export/procurement-report", ExportProcurementReportHandler(cfg))
	app.Get("/export/dashboard", ExportDashboardHandler())
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProcurementReportHandler(t *testing.T) {
	dbtest.Use(t)
	app := newApp()

	resp := get(t, app, "/procurement/reports")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.EqualValues(t, 30, body["days"])
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "top_suppliers")
	assert.Contains(t, body, "orders_over_time")

	resp = get(t, app, "/procurement/reports?days=0")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDashboardHandlers(t *testing.T) {
	db := dbtest.Use(t)
	dbtest.Product(t, db, "LOW", 1, 5, "3.00")
	app := newApp()

	resp := get(t, app, "/dashboard")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.EqualValues(t, 1, body["low_stock_count"])
	assert.Equal(t, "3", body["total_stock_value"])

	resp = get(t, app, "/reports")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Len(t, body["low_stock_items"], 1)
}

func TestExportHandlers_JSON(t *testing.T) {
	db := dbtest.Use(t)
	dbtest.Product(t, db, "LOW", 1, 5, "3.00")
	app := newApp()

	resp := get(t, app, "/export/low-stock")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Low Stock Report", body["title"])
	assert.Len(t, body["items"], 1)

	resp = get(t, app, "/export/procurement-report?days=7")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, decode(t, resp)["period_days"])

	resp = get(t, app, "/export/supplier-performance?supplier_id=42")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = get(t, app, "/export/dashboard?format=pdf")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExportHandlers_XLSX(t *testing.T) {
	db := dbtest.Use(t)
	dbtest.Product(t, db, "LOW", 1, 5, "3.00")
	app := newApp()

	resp := get(t, app, "/export/low-stock?format=xlsx")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, XLSXContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "low-stock-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Low Stock")
	require.NoError(t, err)
	require.Len(t, rows, headerRow+1)
	assert.Equal(t, "Low Stock Report", rows[0][0])
	assert.Equal(t, "SKU", rows[headerRow-1][0])
	assert.Equal(t, []string{"LOW", "Product LOW", "1", "5", "50", "3", "Low Stock"}, rows[headerRow])

	resp = get(t, app, "/export/dashboard?format=xlsx")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	dash, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer dash.Close()
	assert.Equal(t, []string{"Overview", "Low Stock", "Pending Orders"}, dash.GetSheetList())
}
