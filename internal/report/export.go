package report

import (
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/procurement"
	"github.com/Mondejar-101/erpsample/internal/stock"
	"github.com/Mondejar-101/erpsample/internal/supplier"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// exportLimit caps the item lists of the dashboard export.
const exportLimit = 20

type LowStockExport struct {
	Title       string                    `json:"title"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Items       []stock.ReorderSuggestion `json:"items"`
}

func LowStockData(db *gorm.DB, now time.Time) (*LowStockExport, error) {
	items, err := stock.LowStockSuggestions(db)
	if err != nil {
		return nil, err
	}
	return &LowStockExport{Title: "Low Stock Report", GeneratedAt: now, Items: items}, nil
}

type SupplierExportRow struct {
	SupplierID        uint                     `json:"supplier_id"`
	Supplier          string                   `json:"supplier"`
	Rating            decimal.Decimal          `json:"rating"`
	TotalOrders       int                      `json:"total_orders"`
	OnTimeRate        decimal.Decimal          `json:"on_time_rate"`
	QualityScore      decimal.Decimal          `json:"quality_score"`
	PerformanceStatus models.PerformanceStatus `json:"performance_status"`
}

type SupplierExport struct {
	Title       string              `json:"title"`
	GeneratedAt time.Time           `json:"generated_at"`
	Suppliers   []SupplierExportRow `json:"suppliers"`
}

// SupplierPerformanceData covers one supplier when supplierID is set, every
// active supplier by rating otherwise.
func SupplierPerformanceData(db *gorm.DB, supplierID uint, now time.Time) (*SupplierExport, error) {
	var suppliers []models.Supplier
	if supplierID != 0 {
		var s models.Supplier
		if err := db.First(&s, supplierID).Error; err != nil {
			return nil, fmt.Errorf("load supplier %d: %w", supplierID, err)
		}
		suppliers = append(suppliers, s)
	} else if err := db.Where("is_active = ?", true).Order("rating desc").Order("name asc").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list active suppliers: %w", err)
	}

	rows := make([]SupplierExportRow, 0, len(suppliers))
	for i := range suppliers {
		s := &suppliers[i]
		perf, err := supplier.PerformanceData(db, s)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SupplierExportRow{
			SupplierID:        s.ID,
			Supplier:          s.Name,
			Rating:            s.Rating,
			TotalOrders:       perf.TotalOrders,
			OnTimeRate:        perf.OnTimeRate,
			QualityScore:      s.QualityScore,
			PerformanceStatus: perf.PerformanceStatus,
		})
	}
	return &SupplierExport{Title: "Supplier Performance Report", GeneratedAt: now, Suppliers: rows}, nil
}

type ProcurementExport struct {
	Title        string          `json:"title"`
	GeneratedAt  time.Time       `json:"generated_at"`
	PeriodDays   int             `json:"period_days"`
	Summary      *Summary        `json:"summary"`
	TopSuppliers []SupplierValue `json:"top_suppliers"`
}

func ProcurementReportData(db *gorm.DB, days int, now time.Time) (*ProcurementExport, error) {
	summary, err := ProcurementSummary(db, days, now)
	if err != nil {
		return nil, err
	}
	top, err := TopSuppliersByValue(db, days, DefaultTopSuppliers, now)
	if err != nil {
		return nil, err
	}
	return &ProcurementExport{
		Title:        "Procurement Report",
		GeneratedAt:  now,
		PeriodDays:   days,
		Summary:      summary,
		TopSuppliers: top,
	}, nil
}

type DashboardExport struct {
	Title           string                    `json:"title"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	LowStockCount   int                       `json:"low_stock_count"`
	PendingRequests int64                     `json:"pending_requests"`
	OverdueOrders   int                       `json:"overdue_orders"`
	LowStockItems   []models.Product          `json:"low_stock_items"`
	PendingOrders   []models.ProcurementOrder `json:"pending_orders"`
}

func DashboardData(db *gorm.DB, now time.Time) (*DashboardExport, error) {
	low, err := stock.LowStockProducts(db)
	if err != nil {
		return nil, err
	}
	overdue, err := procurement.OverdueOrders(db, now)
	if err != nil {
		return nil, err
	}

	pending := func() *gorm.DB { return db.Model(&models.ProcurementOrder{}).Where("status = ?", models.OrderPending) }
	d := &DashboardExport{
		Title:         "Dashboard Report",
		GeneratedAt:   now,
		LowStockCount: len(low),
		OverdueOrders: len(overdue),
		LowStockItems: low[:min(len(low), exportLimit)],
	}
	if err := pending().Count(&d.PendingRequests).Error; err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	if err := pending().Order("order_date desc").Limit(exportLimit).Find(&d.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return d, nil
}
