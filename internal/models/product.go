package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "In Stock"
	StockStatusLowStock   StockStatus = "Low Stock"
	StockStatusOutOfStock StockStatus = "Out of Stock"
)

const (
	DefaultReorderLevel    = 10
	DefaultReorderQuantity = 50
	DefaultUnitOfMeasure   = "units"
)

// Product is a stock-keeping item. SupplierID is the preferred supplier used
// when low-stock suggestions are turned into purchase orders.
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`
	BaseEntity
	SKU             string          `gorm:"column:sku;size:50;uniqueIndex;not null" json:"sku"`
	CategoryID      *uint           `gorm:"index" json:"category_id"`
	Category        *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	SupplierID      *uint           `gorm:"index" json:"supplier_id"`
	Supplier        *Supplier       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	ReorderLevel    int             `gorm:"not null" json:"reorder_level"`
	ReorderQuantity int             `gorm:"not null" json:"reorder_quantity"`
	CurrentStock    int             `gorm:"not null" json:"current_stock"`
	UnitOfMeasure   string          `gorm:"size:20;not null" json:"unit_of_measure"`
	Location        string          `gorm:"size:100" json:"location"`
	Timestamps
}

// IsLowStock reports whether stock has reached the reorder level.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.ReorderLevel
}

func (p *Product) IsOutOfStock() bool {
	return p.CurrentStock == 0
}

func (p *Product) StockStatus() StockStatus {
	switch {
	case p.IsOutOfStock():
		return StockStatusOutOfStock
	case p.IsLowStock():
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

func (p *Product) TotalValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if strings.TrimSpace(p.SKU) == "" {
		return invalid("sku", "must not be empty")
	}
	if p.UnitPrice.IsNegative() {
		return invalid("unit_price", "must not be negative")
	}
	if p.ReorderLevel < 0 {
		return invalid("reorder_level", "must not be negative")
	}
	if p.ReorderQuantity < 1 {
		return invalid("reorder_quantity", "must be at least 1")
	}
	if p.CurrentStock < 0 {
		return invalid("current_stock", "must not be negative")
	}
	return nil
}
