package pagination

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

type Response struct {
	Items    any   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Parse reads ?page= and ?page_size=, falling back to defaults on bad input.
func Parse(c *fiber.Ctx) Page {
	p := Page{Number: 1, Size: DefaultPageSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		p.Size = min(n, MaxPageSize)
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Apply counts the rows matched by q and limits it to the page. A failed
// count is carried on the returned query, so the caller's Find reports it.
func (p Page) Apply(q *gorm.DB, total *int64) *gorm.DB {
	if err := q.Session(&gorm.Session{}).Count(total).Error; err != nil {
		_ = q.AddError(fmt.Errorf("count rows: %w", err))
		return q
	}
	return q.Offset(p.Offset()).Limit(p.Size)
}

func (p Page) Wrap(items any, total int64) Response {
	return Response{Items: items, Page: p.Number, PageSize: p.Size, Total: total}
}
