package stock

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CountRow is one line of a stock count sheet: column A holds the SKU,
// column B the counted quantity.
type CountRow struct {
	Line    int
	SKU     string
	Counted int
}

// ParseStockCount reads the first sheet of an XLSX stock count. Empty lines
// and a leading header line are skipped; lines that do not parse are
// returned as invalid.
func ParseStockCount(r io.Reader) ([]CountRow, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &models.ValidationError{Field: "file", Message: "is not a readable xlsx workbook"}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &models.ValidationError{Field: "file", Message: "has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	start := 0
	if len(rows) > 0 && len(rows[0]) > 0 {
		first := strings.ToUpper(strings.TrimSpace(rows[0][0]))
		if strings.Contains(first, "SKU") || strings.Contains(first, "PRODUCT") {
			start = 1
		}
	}

	var out []CountRow
	invalid := []string{}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		sku := strings.TrimSpace(row[0])
		if len(row) < 2 {
			invalid = append(invalid, fmt.Sprintf("line %d: %s has no counted quantity", i+1, sku))
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || n < 0 {
			invalid = append(invalid, fmt.Sprintf("line %d: %s has an invalid quantity %q", i+1, sku, row[1]))
			continue
		}
		out = append(out, CountRow{Line: i + 1, SKU: sku, Counted: n})
	}
	return out, invalid, nil
}

type CountImportResult struct {
	MatchedCount  int                  `json:"matched_count"`
	Discrepancies []models.StockParity `json:"discrepancies"`
	Unmatched     []string             `json:"unmatched_skus"`
	Invalid       []string             `json:"invalid_lines"`
}

// ImportStockCount records a parity for every counted product whose count
// differs from its recorded stock. SKUs match case-insensitively.
func ImportStockCount(db *gorm.DB, rows []CountRow, reason string) (*CountImportResult, error) {
	res := &CountImportResult{Discrepancies: []models.StockParity{}, Unmatched: []string{}, Invalid: []string{}}
	for _, row := range rows {
		var p models.Product
		err := db.Where("LOWER(sku) = ?", strings.ToLower(row.SKU)).First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Unmatched = append(res.Unmatched, row.SKU)
				continue
			}
			return nil, fmt.Errorf("look up sku %s: %w", row.SKU, err)
		}
		res.MatchedCount++
		if p.CurrentStock == row.Counted {
			continue
		}
		parity, err := RecordParity(db, p.ID, row.Counted, reason)
		if err != nil {
			return nil, err
		}
		res.Discrepancies = append(res.Discrepancies, *parity)
	}
	return res, nil
}

// POST /api/stock/parity/import (multipart: file=<.xlsx>, reason=)
func ImportStockCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open upload: "+err.Error())
		}
		defer file.Close()

		rows, invalid, err := ParseStockCount(file)
		if err != nil {
			return apierror.From(err, "", "stock count could not be read")
		}
		if len(rows) == 0 && len(invalid) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock count sheet is empty")
		}

		reason := c.FormValue("reason", "Stock count import "+fileHeader.Filename)
		res, err := ImportStockCount(database.DB, rows, reason)
		if err != nil {
			return apierror.From(err, "", "stock count could not be imported")
		}
		res.Invalid = invalid
		log.Printf("stock count %s: %d matched, %d discrepancies, %d unmatched", fileHeader.Filename, res.MatchedCount, len(res.Discrepancies), len(res.Unmatched))
		return c.JSON(res)
	}
}
