package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_IsLowStock(t *testing.T) {
	for stock := 0; stock <= 20; stock++ {
		for level := 0; level <= 20; level++ {
			p := Product{CurrentStock: stock, ReorderLevel: level}
			assert.Equal(t, stock <= level, p.IsLowStock(), "stock=%d level=%d", stock, level)
		}
	}
}

func TestProduct_StockStatus(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		level int
		want  StockStatus
	}{
		{"empty", 0, 10, StockStatusOutOfStock},
		{"empty with zero level", 0, 0, StockStatusOutOfStock},
		{"at level", 10, 10, StockStatusLowStock},
		{"below level", 3, 10, StockStatusLowStock},
		{"above level", 11, 10, StockStatusInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{CurrentStock: tt.stock, ReorderLevel: tt.level}
			assert.Equal(t, tt.want, p.StockStatus())
		})
	}
}

func TestProduct_TotalValue(t *testing.T) {
	p := Product{CurrentStock: 4, UnitPrice: decimal.RequireFromString("12.25")}
	assert.True(t, p.TotalValue().Equal(decimal.RequireFromString("49.00")))
}

func TestProduct_Validate(t *testing.T) {
	valid := func() Product {
		return Product{
			BaseEntity:      BaseEntity{Name: "Bolt M8"},
			SKU:             "BLT-M8",
			ReorderLevel:    DefaultReorderLevel,
			ReorderQuantity: DefaultReorderQuantity,
		}
	}
	p := valid()
	require.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(*Product)
		field  string
	}{
		{"missing name", func(p *Product) { p.Name = " " }, "name"},
		{"missing sku", func(p *Product) { p.SKU = "" }, "sku"},
		{"negative price", func(p *Product) { p.UnitPrice = decimal.NewFromInt(-1) }, "unit_price"},
		{"negative reorder level", func(p *Product) { p.ReorderLevel = -1 }, "reorder_level"},
		{"zero reorder quantity", func(p *Product) { p.ReorderQuantity = 0 }, "reorder_quantity"},
		{"negative stock", func(p *Product) { p.CurrentStock = -2 }, "current_stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
