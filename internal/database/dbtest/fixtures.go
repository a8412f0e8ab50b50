package dbtest

import (
	"testing"

	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func create(tb testing.TB, db *gorm.DB, v any) {
	tb.Helper()
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("create %T: %v", v, err)
	}
}

func Supplier(tb testing.TB, db *gorm.DB, name string) *models.Supplier {
	tb.Helper()
	s := &models.Supplier{
		BaseEntity: models.BaseEntity{Name: name, IsActive: true},
		Email:      "orders@" + name + ".test",
	}
	create(tb, db, s)
	return s
}

func Category(tb testing.TB, db *gorm.DB, name string) *models.Category {
	tb.Helper()
	c := &models.Category{BaseEntity: models.BaseEntity{Name: name, IsActive: true}}
	create(tb, db, c)
	return c
}

// Product creates a product with the given stock and reorder level.
func Product(tb testing.TB, db *gorm.DB, sku string, stock, reorderLevel int, price string) *models.Product {
	tb.Helper()
	p := &models.Product{
		BaseEntity:      models.BaseEntity{Name: "Product " + sku, IsActive: true},
		SKU:             sku,
		UnitPrice:       decimal.RequireFromString(price),
		ReorderLevel:    reorderLevel,
		ReorderQuantity: models.DefaultReorderQuantity,
		CurrentStock:    stock,
		UnitOfMeasure:   models.DefaultUnitOfMeasure,
	}
	create(tb, db, p)
	return p
}

func User(tb testing.TB, db *gorm.DB, email string, role models.UserRole) *models.User {
	tb.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	create(tb, db, u)
	return u
}
