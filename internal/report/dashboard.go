package report

import (
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/notification"
	"github.com/Mondejar-101/erpsample/internal/procurement"
	"github.com/Mondejar-101/erpsample/internal/stock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Dashboard struct {
	TotalProducts       int64                     `json:"total_products"`
	LowStockCount       int64                     `json:"low_stock_count"`
	OutOfStockCount     int64                     `json:"out_of_stock_count"`
	TotalStockValue     decimal.Decimal           `json:"total_stock_value"`
	PendingOrders       int64                     `json:"pending_orders"`
	OverdueOrders       int64                     `json:"overdue_orders"`
	TotalOrders         int64                     `json:"total_orders"`
	ActiveSuppliers     int64                     `json:"active_suppliers"`
	TopSuppliers        []models.Supplier         `json:"top_suppliers"`
	UnreadNotifications []models.Notification     `json:"unread_notifications"`
	RecentTransactions  []models.StockTransaction `json:"recent_transactions"`
	UnresolvedParities  []models.StockParity      `json:"unresolved_parities"`
}

func count(q *gorm.DB, out *int64, what string) error {
	if err := q.Count(out).Error; err != nil {
		return fmt.Errorf("count %s: %w", what, err)
	}
	return nil
}

// BuildDashboard assembles the main dashboard as seen by userID.
func BuildDashboard(db *gorm.DB, userID uint, now time.Time) (*Dashboard, error) {
	d := &Dashboard{TotalStockValue: decimal.Zero}

	product := func() *gorm.DB { return db.Model(&models.Product{}) }
	order := func() *gorm.DB { return db.Model(&models.ProcurementOrder{}) }

	if err := count(product(), &d.TotalProducts, "products"); err != nil {
		return nil, err
	}
	if err := count(product().Where("current_stock <= reorder_level"), &d.LowStockCount, "low stock products"); err != nil {
		return nil, err
	}
	if err := count(product().Where("current_stock = 0"), &d.OutOfStockCount, "out of stock products"); err != nil {
		return nil, err
	}
	if err := count(order().Where("status = ?", models.OrderPending), &d.PendingOrders, "pending orders"); err != nil {
		return nil, err
	}
	if err := count(order(), &d.TotalOrders, "orders"); err != nil {
		return nil, err
	}
	if err := count(db.Model(&models.Supplier{}).Where("is_active = ?", true), &d.ActiveSuppliers, "active suppliers"); err != nil {
		return nil, err
	}

	overdue, err := procurement.OverdueOrders(db, now)
	if err != nil {
		return nil, err
	}
	d.OverdueOrders = int64(len(overdue))

	var stockRows []models.Product
	if err := db.Select("id", "current_stock", "unit_price").Find(&stockRows).Error; err != nil {
		return nil, fmt.Errorf("load stock values: %w", err)
	}
	for i := range stockRows {
		d.TotalStockValue = d.TotalStockValue.Add(stockRows[i].TotalValue())
	}

	if err := db.Where("is_active = ?", true).Order("rating desc").Order("name asc").Limit(5).Find(&d.TopSuppliers).Error; err != nil {
		return nil, fmt.Errorf("list top suppliers: %w", err)
	}
	if err := notification.Query(db, userID, false).Limit(10).Find(&d.UnreadNotifications).Error; err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	if err := db.Order("created_at desc").Order("id desc").Limit(10).Find(&d.RecentTransactions).Error; err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	if d.UnresolvedParities, err = stock.UnresolvedParities(db); err != nil {
		return nil, err
	}
	return d, nil
}
