package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/Mondejar-101/erpsample/internal/database/dbtest"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysAgo(n int) time.Time { return now.AddDate(0, 0, -n) }

var seq int

func order(t *testing.T, db *gorm.DB, s *models.Supplier, status models.OrderStatus, at time.Time, total string) *models.ProcurementOrder {
	t.Helper()
	seq++
	o := &models.ProcurementOrder{
		OrderNumber: fmt.Sprintf("PO-TEST-%03d", seq),
		SupplierID:  s.ID,
		Status:      status,
		OrderDate:   at,
		TotalAmount: dec(total),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(o).Error)
	return o
}

type fixture struct {
	db   *gorm.DB
	acme *models.Supplier
	bolt *models.Supplier
}

// setup places three orders inside a 30 day window and one outside it.
func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.New(t)
	f := fixture{db: db, acme: dbtest.Supplier(t, db, "acme"), bolt: dbtest.Supplier(t, db, "bolt")}
	order(t, db, f.acme, models.OrderPending, daysAgo(1), "100.00")
	order(t, db, f.bolt, models.OrderReceived, daysAgo(5), "50.25")
	order(t, db, f.acme, models.OrderReceived, daysAgo(5), "10.00")
	order(t, db, f.bolt, models.OrderReceived, daysAgo(40), "200.00")
	return f
}

func TestProcurementSummary(t *testing.T) {
	f := setup(t)

	s, err := ProcurementSummary(f.db, 30, now)
	require.NoError(t, err)
	assert.Equal(t, 30, s.Days)
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, "160.25", s.TotalValue.StringFixed(2))
	assert.Equal(t, daysAgo(30), s.StartDate)
	assert.Equal(t, []StatusCount{
		{Status: models.OrderPending, Label: "Pending", Count: 1},
		{Status: models.OrderReceived, Label: "Received", Count: 2},
	}, s.OrdersByStatus)

	all, err := ProcurementSummary(f.db, 60, now)
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalOrders)
}

func TestTopSuppliersByValue_OnlyCountsThePeriod(t *testing.T) {
	f := setup(t)

	top, err := TopSuppliersByValue(f.db, 30, 10, now)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "acme", top[0].Name)
	assert.Equal(t, 2, top[0].OrderCount)
	assert.Equal(t, "110.00", top[0].TotalOrderValue.StringFixed(2))
	assert.Equal(t, "bolt", top[1].Name)
	assert.Equal(t, "50.25", top[1].TotalOrderValue.StringFixed(2))

	// bolt leads once the old order is inside the window.
	top, err = TopSuppliersByValue(f.db, 60, 1, now)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "bolt", top[0].Name)
}

func TestOrdersOverTime(t *testing.T) {
	f := setup(t)

	points, err := OrdersOverTime(f.db, 30, now)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-03-10", points[0].Day)
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, "60.25", points[0].Total.StringFixed(2))
	assert.Equal(t, "2026-03-14", points[1].Day)
	assert.Equal(t, 1, points[1].Count)
}

func TestStockByCategory(t *testing.T) {
	db := dbtest.New(t)
	tools := dbtest.Category(t, db, "Tools")
	p := dbtest.Product(t, db, "HAM", 10, 2, "2.50")
	require.NoError(t, db.Model(p).Update("category_id", tools.ID).Error)
	dbtest.Product(t, db, "LOOSE", 4, 2, "1.00")
	dbtest.Product(t, db, "LOOSE-2", 0, 2, "9.99")

	rows, err := StockByCategory(db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tools", rows[0].Category)
	assert.Equal(t, 1, rows[0].TotalItems)
	assert.Equal(t, "25.00", rows[0].TotalValue.StringFixed(2))
	assert.Equal(t, Uncategorized, rows[1].Category)
	assert.Equal(t, 2, rows[1].TotalItems)
	assert.Equal(t, "4.00", rows[1].TotalValue.StringFixed(2))
}

func TestSupplierPerformance(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(f.bolt).Update("rating", dec("4.5")).Error)
	idle := dbtest.Supplier(t, f.db, "idle")
	require.NoError(t, f.db.Model(idle).Update("is_active", false).Error)

	rows, err := SupplierPerformance(f.db, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "bolt", rows[0].Name)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, "125.13", rows[0].AvgOrderValue.StringFixed(2))
	assert.Equal(t, "acme", rows[1].Name)
	assert.Equal(t, "55.00", rows[1].AvgOrderValue.StringFixed(2))
	assert.Equal(t, models.StatusForScore(rows[1].PerformanceScore), rows[1].PerformanceStatus)

	rows, err = SupplierPerformance(f.db, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBuildDashboard(t *testing.T) {
	f := setup(t)
	late := order(t, f.db, f.acme, models.OrderOrdered, daysAgo(10), "5.00")
	require.NoError(t, f.db.Model(late).Update("expected_delivery_date", daysAgo(2)).Error)

	dbtest.Product(t, f.db, "OK", 50, 5, "1.00")
	dbtest.Product(t, f.db, "LOW", 3, 5, "2.00")
	dbtest.Product(t, f.db, "OUT", 0, 5, "4.00")
	user := dbtest.User(t, f.db, "staff@erp.test", models.RoleStaff)
	other := dbtest.User(t, f.db, "other@erp.test", models.RoleStaff)
	require.NoError(t, f.db.Create(&models.Notification{Type: models.NotificationLowStock, Title: "broadcast", Message: "m", Priority: models.PriorityMedium}).Error)
	require.NoError(t, f.db.Create(&models.Notification{UserID: &other.ID, Type: models.NotificationLowStock, Title: "private", Message: "m", Priority: models.PriorityMedium}).Error)

	d, err := BuildDashboard(f.db, user.ID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.TotalProducts)
	assert.EqualValues(t, 2, d.LowStockCount)
	assert.EqualValues(t, 1, d.OutOfStockCount)
	assert.Equal(t, "56.00", d.TotalStockValue.StringFixed(2))
	assert.EqualValues(t, 1, d.PendingOrders)
	assert.EqualValues(t, 1, d.OverdueOrders)
	assert.EqualValues(t, 5, d.TotalOrders)
	assert.EqualValues(t, 2, d.ActiveSuppliers)
	assert.Len(t, d.TopSuppliers, 2)
	require.Len(t, d.UnreadNotifications, 1)
	assert.Equal(t, "broadcast", d.UnreadNotifications[0].Title)
	assert.Empty(t, d.UnresolvedParities)
}

func TestExportPayloads(t *testing.T) {
	f := setup(t)
	dbtest.Product(t, f.db, "LOW", 3, 5, "2.00")

	low, err := LowStockData(f.db, now)
	require.NoError(t, err)
	assert.Equal(t, "Low Stock Report", low.Title)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "LOW", low.Items[0].SKU)

	sup, err := SupplierPerformanceData(f.db, f.bolt.ID, now)
	require.NoError(t, err)
	require.Len(t, sup.Suppliers, 1)
	assert.Equal(t, "bolt", sup.Suppliers[0].Supplier)
	assert.Equal(t, 2, sup.Suppliers[0].TotalOrders)

	all, err := SupplierPerformanceData(f.db, 0, now)
	require.NoError(t, err)
	assert.Len(t, all.Suppliers, 2)

	_, err = SupplierPerformanceData(f.db, 999, now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	proc, err := ProcurementReportData(f.db, 30, now)
	require.NoError(t, err)
	assert.Equal(t, 30, proc.PeriodDays)
	assert.Equal(t, 3, proc.Summary.TotalOrders)
	assert.Len(t, proc.TopSuppliers, 2)

	dash, err := DashboardData(f.db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.LowStockCount)
	assert.EqualValues(t, 1, dash.PendingRequests)
	require.Len(t, dash.PendingOrders, 1)
	assert.Equal(t, models.OrderPending, dash.PendingOrders[0].Status)
}
