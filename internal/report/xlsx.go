package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// headerRow is where a sheet's column headers go; the title and generation
// time sit above it.
const headerRow = 4

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

func cell(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format("2006-01-02")
	case time.Time:
		return x.UTC().Format("2006-01-02")
	}
	return v
}

func writeWorkbook(title string, generatedAt time.Time, sheets ...sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", sh.name, err)
		}

		if err := f.SetCellValue(sh.name, "A1", title); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sh.name, "A2", "Generated at "+generatedAt.UTC().Format(time.RFC3339)); err != nil {
			return nil, err
		}

		header := make([]any, len(sh.header))
		for j, h := range sh.header {
			header[j] = h
		}
		if err := f.SetSheetRow(sh.name, fmt.Sprintf("A%d", headerRow), &header); err != nil {
			return nil, fmt.Errorf("write header of %s: %w", sh.name, err)
		}
		if err := f.SetRowStyle(sh.name, 1, 1, bold); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sh.name, headerRow, headerRow, bold); err != nil {
			return nil, err
		}

		for r, row := range sh.rows {
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = cell(v)
			}
			if err := f.SetSheetRow(sh.name, fmt.Sprintf("A%d", headerRow+1+r), &values); err != nil {
				return nil, fmt.Errorf("write row %d of %s: %w", r+1, sh.name, err)
			}
		}

		if n := len(sh.header); n > 0 {
			last, err := excelize.ColumnNumberToName(n)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sh.name, "A", last, 18); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func (e *LowStockExport) XLSX() (*bytes.Buffer, error) {
	sh := sheet{
		name:   "Low Stock",
		header: []string{"SKU", "Product", "Current Stock", "Reorder Level", "Suggested Quantity", "Unit Price", "Status"},
	}
	for _, it := range e.Items {
		sh.rows = append(sh.rows, []any{it.SKU, it.Name, it.CurrentStock, it.ReorderLevel, it.SuggestedQuantity, it.UnitPrice, string(it.Status)})
	}
	return writeWorkbook(e.Title, e.GeneratedAt, sh)
}

func (e *SupplierExport) XLSX() (*bytes.Buffer, error) {
	sh := sheet{
		name:   "Suppliers",
		header: []string{"Supplier", "Rating", "Total Orders", "On-Time Rate (%)", "Quality Score", "Performance"},
	}
	for _, s := range e.Suppliers {
		sh.rows = append(sh.rows, []any{s.Supplier, s.Rating, s.TotalOrders, s.OnTimeRate, s.QualityScore, string(s.PerformanceStatus)})
	}
	return writeWorkbook(e.Title, e.GeneratedAt, sh)
}

func (e *ProcurementExport) XLSX() (*bytes.Buffer, error) {
	summary := sheet{
		name:   "Summary",
		header: []string{"Metric", "Value"},
		rows: [][]any{
			{"Period (days)", e.PeriodDays},
			{"From", e.Summary.StartDate},
			{"To", e.Summary.EndDate},
			{"Total Orders", e.Summary.TotalOrders},
			{"Total Value", e.Summary.TotalValue},
		},
	}
	for _, sc := range e.Summary.OrdersByStatus {
		summary.rows = append(summary.rows, []any{sc.Label + " Orders", sc.Count})
	}

	top := sheet{
		name:   "Top Suppliers",
		header: []string{"Supplier", "Orders", "Total Order Value"},
	}
	for _, s := range e.TopSuppliers {
		top.rows = append(top.rows, []any{s.Name, s.OrderCount, s.TotalOrderValue})
	}
	return writeWorkbook(e.Title, e.GeneratedAt, summary, top)
}

func (e *DashboardExport) XLSX() (*bytes.Buffer, error) {
	overview := sheet{
		name:   "Overview",
		header: []string{"Metric", "Value"},
		rows: [][]any{
			{"Low Stock Products", e.LowStockCount},
			{"Pending Requests", e.PendingRequests},
			{"Overdue Orders", e.OverdueOrders},
		},
	}

	low := sheet{
		name:   "Low Stock",
		header: []string{"SKU", "Product", "Current Stock", "Reorder Level"},
	}
	for _, p := range e.LowStockItems {
		low.rows = append(low.rows, []any{p.SKU, p.Name, p.CurrentStock, p.ReorderLevel})
	}

	pending := sheet{
		name:   "Pending Orders",
		header: []string{"Order Number", "Order Date", "Expected Delivery", "Total Amount"},
	}
	for _, o := range e.PendingOrders {
		pending.rows = append(pending.rows, []any{o.OrderNumber, o.OrderDate, o.ExpectedDeliveryDate, o.TotalAmount})
	}
	return writeWorkbook(e.Title, e.GeneratedAt, overview, low, pending)
}
