package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type OrderChartPoint struct {
	Label     string          `json:"label"` // day, week start or month start
	Orders    int             `json:"orders"`
	Open      decimal.Decimal `json:"open"`
	Received  decimal.Decimal `json:"received"`
	Cancelled decimal.Decimal `json:"cancelled"`
	Total     decimal.Decimal `json:"total"`
}

type OrderChartTotals struct {
	Orders    int             `json:"orders"`
	Open      decimal.Decimal `json:"open"`
	Received  decimal.Decimal `json:"received"`
	Cancelled decimal.Decimal `json:"cancelled"`
	Total     decimal.Decimal `json:"total"`
}

type OrderChartResponse struct {
	Period      string            `json:"period"` // daily | weekly | monthly
	From        string            `json:"from"`
	To          string            `json:"to"`
	Points      []OrderChartPoint `json:"points"`
	GrandTotals OrderChartTotals  `json:"grand_totals"`
}

func defaultCount(period string) int {
	switch period {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

// bucket truncates t to the start of its day, ISO week or month.
func bucket(period string, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // monday = 0
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

// chartRange returns the first bucket and the exclusive end of the last one.
func chartRange(period string, count int, now time.Time) (time.Time, time.Time) {
	last := bucket(period, now)
	switch period {
	case PeriodWeekly:
		return last.AddDate(0, 0, -7*(count-1)), last.AddDate(0, 0, 7)
	case PeriodMonthly:
		return last.AddDate(0, -(count - 1), 0), last.AddDate(0, 1, 0)
	}
	return last.AddDate(0, 0, -(count - 1)), last.AddDate(0, 0, 1)
}

// OrderChart totals procurement order values per bucket over the last count
// buckets, split by open, received and cancelled orders. Cancelled orders
// are left out of Total.
func OrderChart(db *gorm.DB, period string, count int, now time.Time) (*OrderChartResponse, error) {
	start, end := chartRange(period, count, now)

	var orders []models.ProcurementOrder
	err := db.Select("id", "status", "order_date", "total_amount").
		Where("order_date >= ? AND order_date < ?", start, end).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for chart: %w", err)
	}

	buckets := make(map[time.Time]*OrderChartPoint)
	for i := range orders {
		o := &orders[i]
		key := bucket(period, o.OrderDate)
		agg, ok := buckets[key]
		if !ok {
			agg = &OrderChartPoint{
				Label:     key.Format("2006-01-02"),
				Open:      decimal.Zero,
				Received:  decimal.Zero,
				Cancelled: decimal.Zero,
			}
			buckets[key] = agg
		}

		agg.Orders++
		switch {
		case o.Status == models.OrderReceived:
			agg.Received = agg.Received.Add(o.TotalAmount)
		case o.Status == models.OrderCancelled:
			agg.Cancelled = agg.Cancelled.Add(o.TotalAmount)
		default:
			agg.Open = agg.Open.Add(o.TotalAmount)
		}
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	resp := &OrderChartResponse{
		Period: period,
		From:   start.Format("2006-01-02"),
		To:     end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points: make([]OrderChartPoint, 0, len(keys)),
		GrandTotals: OrderChartTotals{
			Open:      decimal.Zero,
			Received:  decimal.Zero,
			Cancelled: decimal.Zero,
			Total:     decimal.Zero,
		},
	}
	for _, k := range keys {
		p := buckets[k]
		p.Total = p.Open.Add(p.Received)
		resp.Points = append(resp.Points, *p)

		g := &resp.GrandTotals
		g.Orders += p.Orders
		g.Open = g.Open.Add(p.Open)
		g.Received = g.Received.Add(p.Received)
		g.Cancelled = g.Cancelled.Add(p.Cancelled)
		g.Total = g.Total.Add(p.Total)
	}
	return resp, nil
}

// GET /api/dashboard/order-chart?period=daily&count=7
func OrderChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", PeriodDaily)
		switch period {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}

		count := defaultCount(period)
		if countStr := c.Query("count"); countStr != "" {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid count")
			}
		}

		resp, err := OrderChart(database.DB, period, count, time.Now().UTC())
		if err != nil {
			return apierror.From(err, "", "order chart could not be built")
		}
		return c.JSON(resp)
	}
}
