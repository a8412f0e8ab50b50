// Package report aggregates procurement and stock data for the analytics
// views and exports. Grouping happens in Go so the queries stay portable.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultTopSuppliers = 10
	Uncategorized       = "Uncategorized"
)

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
}

type Summary struct {
	Days           int             `json:"days"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	TotalValue     decimal.Decimal `json:"total_value"`
	TotalOrders    int             `json:"total_orders"`
	OrdersByStatus []StatusCount   `json:"orders_by_status"`
}

func periodStart(days int, now time.Time) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

func ordersSince(db *gorm.DB, start time.Time) ([]models.ProcurementOrder, error) {
	var orders []models.ProcurementOrder
	if err := db.Preload("Supplier").Where("order_date >= ?", start).Order("order_date asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders since %s: %w", start.Format(time.RFC3339), err)
	}
	return orders, nil
}

// ProcurementSummary covers orders placed in the last days days.
func ProcurementSummary(db *gorm.DB, days int, now time.Time) (*Summary, error) {
	start := periodStart(days, now)
	orders, err := ordersSince(db, start)
	if err != nil {
		return nil, err
	}

	counts := map[models.OrderStatus]int{}
	total := decimal.Zero
	for i := range orders {
		counts[orders[i].Status]++
		total = total.Add(orders[i].TotalAmount)
	}

	s := &Summary{
		Days:           days,
		StartDate:      start,
		EndDate:        now,
		TotalValue:     total,
		TotalOrders:    len(orders),
		OrdersByStatus: []StatusCount{},
	}
	for _, st := range models.OrderStatuses() {
		if counts[st] > 0 {
			s.OrdersByStatus = append(s.OrdersByStatus, StatusCount{Status: st, Label: st.Label(), Count: counts[st]})
		}
	}
	return s, nil
}

type SupplierValue struct {
	SupplierID      uint            `json:"supplier_id"`
	Name            string          `json:"name"`
	TotalOrderValue decimal.Decimal `json:"total_order_value"`
	OrderCount      int             `json:"order_count"`
}

// TopSuppliersByValue ranks suppliers by the value of the orders they
// received within the period.
func TopSuppliersByValue(db *gorm.DB, days, limit int, now time.Time) ([]SupplierValue, error) {
	orders, err := ordersSince(db, periodStart(days, now))
	if err != nil {
		return nil, err
	}

	byID := map[uint]*SupplierValue{}
	for i := range orders {
		o := &orders[i]
		v, ok := byID[o.SupplierID]
		if !ok {
			v = &SupplierValue{SupplierID: o.SupplierID, Name: o.Supplier.Name, TotalOrderValue: decimal.Zero}
			byID[o.SupplierID] = v
		}
		v.TotalOrderValue = v.TotalOrderValue.Add(o.TotalAmount)
		v.OrderCount++
	}

	out := make([]SupplierValue, 0, len(byID))
	for _, v := range byID {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalOrderValue.Cmp(out[j].TotalOrderValue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type DayPoint struct {
	Day   string          `json:"day"` // 2006-01-02
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// OrdersOverTime returns one point per day that had orders, oldest first.
func OrdersOverTime(db *gorm.DB, days int, now time.Time) ([]DayPoint, error) {
	orders, err := ordersSince(db, periodStart(days, now))
	if err != nil {
		return nil, err
	}
	points := []DayPoint{}
	for i := range orders {
		day := orders[i].OrderDate.UTC().Format("2006-01-02")
		if n := len(points); n > 0 && points[n-1].Day == day {
			points[n-1].Count++
			points[n-1].Total = points[n-1].Total.Add(orders[i].TotalAmount)
			continue
		}
		points = append(points, DayPoint{Day: day, Count: 1, Total: orders[i].TotalAmount})
	}
	return points, nil
}

type CategoryStock struct {
	Category   string          `json:"category"`
	TotalItems int             `json:"total_items"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func StockByCategory(db *gorm.DB) ([]CategoryStock, error) {
	var products []models.Product
	if err := db.Preload("Category").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byName := map[string]*CategoryStock{}
	for i := range products {
		name := Uncategorized
		if products[i].Category != nil {
			name = products[i].Category.Name
		}
		cs, ok := byName[name]
		if !ok {
			cs = &CategoryStock{Category: name, TotalValue: decimal.Zero}
			byName[name] = cs
		}
		cs.TotalItems++
		cs.TotalValue = cs.TotalValue.Add(products[i].TotalValue())
	}

	out := make([]CategoryStock, 0, len(byName))
	for _, cs := range byName {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type SupplierPerformanceRow struct {
	SupplierID        uint                     `json:"supplier_id"`
	Name              string                   `json:"name"`
	Rating            decimal.Decimal          `json:"rating"`
	OrderCount        int                      `json:"order_count"`
	AvgOrderValue     decimal.Decimal          `json:"avg_order_value"`
	PerformanceScore  decimal.Decimal          `json:"performance_score"`
	PerformanceStatus models.PerformanceStatus `json:"performance_status"`
}

// SupplierPerformance lists active suppliers by rating with their order
// count and average order value.
func SupplierPerformance(db *gorm.DB, limit int) ([]SupplierPerformanceRow, error) {
	var suppliers []models.Supplier
	q := db.Where("is_active = ?", true).Order("rating desc").Order("name asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	if len(suppliers) == 0 {
		return []SupplierPerformanceRow{}, nil
	}

	ids := make([]uint, 0, len(suppliers))
	for _, s := range suppliers {
		ids = append(ids, s.ID)
	}
	var orders []models.ProcurementOrder
	if err := db.Select("id", "supplier_id", "total_amount").Where("supplier_id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list supplier orders: %w", err)
	}
	counts := map[uint]int{}
	totals := map[uint]decimal.Decimal{}
	for _, o := range orders {
		counts[o.SupplierID]++
		totals[o.SupplierID] = totals[o.SupplierID].Add(o.TotalAmount)
	}

	out := make([]SupplierPerformanceRow, 0, len(suppliers))
	for i := range suppliers {
		s := &suppliers[i]
		avg := decimal.Zero
		if n := counts[s.ID]; n > 0 {
			avg = totals[s.ID].Div(decimal.NewFromInt(int64(n))).Round(2)
		}
		out = append(out, SupplierPerformanceRow{
			SupplierID:        s.ID,
			Name:              s.Name,
			Rating:            s.Rating,
			OrderCount:        counts[s.ID],
			AvgOrderValue:     avg,
			PerformanceScore:  s.PerformanceScore(),
			PerformanceStatus: s.PerformanceStatus(),
		})
	}
	return out, nil
}

type Analytics struct {
	StockByCategory     []CategoryStock           `json:"stock_by_category"`
	SupplierPerformance []SupplierPerformanceRow  `json:"supplier_performance"`
	LowStockItems       []models.Product          `json:"low_stock_items"`
	RecentOrders        []models.ProcurementOrder `json:"recent_orders"`
}

func BuildAnalytics(db *gorm.DB) (*Analytics, error) {
	var a Analytics
	var err error
	if a.StockByCategory, err = StockByCategory(db); err != nil {
		return nil, err
	}
	if a.SupplierPerformance, err = SupplierPerformance(db, DefaultTopSuppliers); err != nil {
		return nil, err
	}
	if err = db.Where("current_stock <= reorder_level").Order("current_stock asc").Limit(20).Find(&a.LowStockItems).Error; err != nil {
		return nil, fmt.Errorf("list low stock items: %w", err)
	}
	if err = db.Order("order_date desc").Limit(10).Find(&a.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	return &a, nil
}
