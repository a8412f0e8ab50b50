package main

import (
	"log"
	"strings"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/dashboard"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/notification"
	"github.com/Mondejar-101/erpsample/internal/procurement"
	"github.com/Mondejar-101/erpsample/internal/report"
	"github.com/Mondejar-101/erpsample/internal/stock"
	"github.com/Mondejar-101/erpsample/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: apierror.Handler,
		BodyLimit:    8 * 1024 * 1024, // stock count uploads
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", auth.MeHandler())

	// Dashboards and reports
	protected.Get("/dashboard", report.DashboardHandler())
	protected.Get("/dashboard/order-chart", dashboard.OrderChartHandler())
	protected.Get("/reports", report.AnalyticsHandler())

	// Categories
	protected.Get("/categories", stock.ListCategoriesHandler())
	protected.Get("/categories/:id", stock.GetCategoryHandler())
	protected.Post("/categories", adminOnly, stock.CreateCategoryHandler())
	protected.Put("/categories/:id", adminOnly, stock.UpdateCategoryHandler())
	protected.Delete("/categories/:id", adminOnly, stock.DeleteCategoryHandler())

	// Stock; fixed paths go before /stock/:id
	protected.Get("/stock", stock.ListProductsHandler())
	protected.Post("/stock", adminOnly, stock.CreateProductHandler())
	protected.Get("/stock/low-stock-dashboard", stock.LowStockDashboardHandler())
	protected.Post("/stock/low-stock/reorder", adminOnly, procurement.ReorderHandler())
	protected.Get("/stock/parity", stock.ListParitiesHandler())
	protected.Post("/stock/parity", stock.CreateParityHandler())
	protected.Post("/stock/parity/import", stock.ImportStockCountHandler())
	protected.Post("/stock/parity/:id/resolve", stock.ResolveParityHandler())
	protected.Get("/stock/:id", stock.GetProductHandler())
	protected.Put("/stock/:id", adminOnly, stock.UpdateProductHandler())
	protected.Delete("/stock/:id", adminOnly, stock.DeleteProductHandler())
	protected.Get("/stock/:id/transactions", stock.ListTransactionsHandler())
	protected.Post("/stock/:id/transactions", stock.CreateTransactionHandler())

	// Suppliers
	protected.Get("/suppliers", supplier.ListSuppliersHandler())
	protected.Post("/suppliers", adminOnly, supplier.CreateSupplierHandler())
	protected.Get("/suppliers/:id", supplier.GetSupplierHandler())
	protected.Put("/suppliers/:id", adminOnly, supplier.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", adminOnly, supplier.DeleteSupplierHandler())
	protected.Post("/suppliers/:id/evaluate", supplier.EvaluateHandler())
	protected.Get("/suppliers/:id/evaluations", supplier.ListEvaluationsHandler())

	// Procurement
	protected.Get("/procurement", procurement.ListOrdersHandler())
	protected.Post("/procurement", procurement.CreateOrderHandler())
	protected.Get("/procurement/reports", report.ProcurementReportHandler(cfg))
	protected.Get("/procurement/overdue", procurement.OverdueOrdersHandler())
	protected.Get("/procurement/:id", procurement.GetOrderHandler())
	protected.Put("/procurement/:id", procurement.UpdateOrderHandler())
	protected.Post("/procurement/:id/status", procurement.ChangeStatusHandler())

	// Notifications
	protected.Get("/notifications", notification.ListNotificationsHandler())
	protected.Post("/notifications/read-all", notification.MarkAllReadHandler())
	protected.Post("/notifications/scan", notification.ScanHandler(cfg))
	protected.Post("/notifications/:id/read", notification.MarkReadHandler())

	// Exports (?format=xlsx for a workbook)
	protected.Get("/export/low-stock", report.ExportLowStockHandler())
	protected.Get("/export/supplier-performance", report.ExportSupplierPerformanceHandler())
	protected.Get("/export/procurement-report", report.ExportProcurementReportHandler(cfg))
	protected.Get("/export/dashboard", report.ExportDashboardHandler())

	// Audit logs
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", adminOnly, audit.UndoAuditLogHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
