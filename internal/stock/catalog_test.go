package stock

import (
	"testing"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/database/dbtest"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var admin = audit.Actor{ID: 1, Name: "admin"}

func TestCreateProduct_DefaultsAndAudit(t *testing.T) {
	db := dbtest.New(t)

	p, err := CreateProduct(db, admin, ProductInput{
		Name:      ptr("Bolt M6"),
		SKU:       ptr(" BOLT-6 "),
		UnitPrice: ptr(decimal.RequireFromString("0.35")),
	})
	require.NoError(t, err)
	assert.Equal(t, "BOLT-6", p.SKU)
	assert.Equal(t, models.DefaultReorderLevel, p.ReorderLevel)
	assert.Equal(t, models.DefaultReorderQuantity, p.ReorderQuantity)
	assert.Equal(t, models.DefaultUnitOfMeasure, p.UnitOfMeasure)
	assert.True(t, p.IsActive)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, audit.EntityProduct, logs[0].EntityType)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, "null", logs[0].BeforeData)

	_, err = CreateProduct(db, admin, ProductInput{Name: ptr("Other"), SKU: ptr("BOLT-6")})
	assert.ErrorIs(t, err, ErrDuplicateSKU)
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestCreateProduct_Validation(t *testing.T) {
	db := dbtest.New(t)
	var verr *models.ValidationError

	_, err := CreateProduct(db, admin, ProductInput{SKU: ptr("X")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = CreateProduct(db, admin, ProductInput{Name: ptr("X"), SKU: ptr("X"), CategoryID: ptr(uint(99))})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category_id", verr.Field)

	_, err = CreateProduct(db, admin, ProductInput{Name: ptr("X"), SKU: ptr("X"), CurrentStock: ptr(-1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "current_stock", verr.Field)
}

func TestUpdateProduct(t *testing.T) {
	db := dbtest.New(t)
	cat := dbtest.Category(t, db, "Fasteners")
	p := dbtest.Product(t, db, "SKU-1", 4, 5, "1.00")

	updated, err := UpdateProduct(db, admin, p.ID, ProductInput{CategoryID: &cat.ID, ReorderLevel: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, *updated.CategoryID)
	assert.False(t, updated.IsLowStock())

	_, err = UpdateProduct(db, admin, p.ID, ProductInput{CurrentStock: ptr(100)})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	cleared, err := UpdateProduct(db, admin, p.ID, ProductInput{CategoryID: ptr(uint(0))})
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)
}

func TestListProducts_SearchAndStatus(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Product(t, db, "BOLT-6", 0, 5, "1.00")
	dbtest.Product(t, db, "NUT-6", 3, 5, "1.00")
	dbtest.Product(t, db, "WASHER", 40, 5, "1.00")

	var got []models.Product
	require.NoError(t, ListProducts(db, ProductFilter{Search: "bolt"}).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "BOLT-6", got[0].SKU)

	require.NoError(t, ListProducts(db, ProductFilter{Search: "-6", Status: "low"}).Find(&got).Error)
	assert.Len(t, got, 2)

	require.NoError(t, ListProducts(db, ProductFilter{Status: "out"}).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "BOLT-6", got[0].SKU)
}

func TestCategory_RejectsCycles(t *testing.T) {
	db := dbtest.New(t)
	root, err := CreateCategory(db, admin, CategoryInput{Name: ptr("Hardware")})
	require.NoError(t, err)
	child, err := CreateCategory(db, admin, CategoryInput{Name: ptr("Fasteners"), ParentID: &root.ID})
	require.NoError(t, err)

	var verr *models.ValidationError
	_, err = UpdateCategory(db, admin, root.ID, CategoryInput{ParentID: &child.ID})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parent_id", verr.Field)

	_, err = UpdateCategory(db, admin, root.ID, CategoryInput{ParentID: &root.ID})
	assert.ErrorAs(t, err, &verr)

	_, err = CreateCategory(db, admin, CategoryInput{Name: ptr("Orphan"), ParentID: ptr(uint(42))})
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	db := dbtest.New(t)
	cat := dbtest.Category(t, db, "Fasteners")
	p := dbtest.Product(t, db, "SKU-1", 4, 5, "1.00")
	require.NoError(t, db.Model(p).Update("category_id", cat.ID).Error)

	require.NoError(t, DeleteCategory(db, admin, cat.ID))
	assert.Nil(t, reload(t, db, p.ID).CategoryID)
}
