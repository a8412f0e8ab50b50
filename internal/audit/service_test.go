package audit

import (
	"testing"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/database/dbtest"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var actor = Actor{ID: 1, Name: "admin"}

func lastLog(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var l models.AuditLog
	require.NoError(t, db.Order("id desc").First(&l).Error)
	return l
}

func TestUndoCreate_DeletesEntity(t *testing.T) {
	db := dbtest.New(t)
	c := dbtest.Category(t, db, "Hardware")
	require.NoError(t, actor.Log(db, EntityCategory, c.ID, models.AuditActionCreate, "Created category Hardware", nil, c))
	entry := lastLog(t, db)

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UndoLog(db, entry.ID, actor.ID, actor.Name, now))

	err := db.First(&models.Category{}, c.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var undone models.AuditLog
	require.NoError(t, db.First(&undone, entry.ID).Error)
	assert.True(t, undone.IsUndone)
	assert.Equal(t, actor.ID, *undone.UndoneBy)

	undo := lastLog(t, db)
	assert.Equal(t, models.AuditActionUndo, undo.Action)
	assert.Equal(t, "Undone: Created category Hardware", undo.Description)

	err = UndoLog(db, entry.ID, actor.ID, actor.Name, now)
	assert.ErrorIs(t, err, ErrAlreadyUndone)
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestUndoUpdate_RestoresBefore(t *testing.T) {
	db := dbtest.New(t)
	s := dbtest.Supplier(t, db, "acme")
	before := *s

	s.Name = "Acme Ltd"
	s.QualityScore = decimal.RequireFromString("90")
	require.NoError(t, db.Save(s).Error)
	require.NoError(t, actor.Log(db, EntitySupplier, s.ID, models.AuditActionUpdate, "Updated supplier", before, s))

	// evaluations and deliveries land after the edit
	require.NoError(t, db.Model(&models.Supplier{}).Where("id = ?", s.ID).Updates(map[string]any{
		"rating":                decimal.RequireFromString("4.5"),
		"total_orders":          3,
		"on_time_delivery_rate": decimal.RequireFromString("66.67"),
	}).Error)

	require.NoError(t, UndoLog(db, lastLog(t, db).ID, actor.ID, actor.Name, time.Now()))

	var got models.Supplier
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.Equal(t, "acme", got.Name)
	assert.True(t, got.QualityScore.IsZero())
	assert.Equal(t, "4.50", got.Rating.StringFixed(2))
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, "66.67", got.OnTimeDeliveryRate.StringFixed(2))
}

func TestUndoUpdate_KeepsBookedStock(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.Product(t, db, "SKU-1", 100, 5, "1.00")
	before := *p

	p.UnitPrice = decimal.RequireFromString("2.00")
	require.NoError(t, db.Save(p).Error)
	require.NoError(t, actor.Log(db, EntityProduct, p.ID, models.AuditActionUpdate, "Updated product", before, p))

	// an OUT 95 booked after the price change
	require.NoError(t, db.Create(&models.StockTransaction{
		ProductID: p.ID, Type: models.TransactionOut, Quantity: 95, StockBefore: 100, StockAfter: 5,
	}).Error)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("current_stock", 5).Error)

	require.NoError(t, UndoLog(db, lastLog(t, db).ID, actor.ID, actor.Name, time.Now()))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, "1.00", got.UnitPrice.StringFixed(2))
	assert.Equal(t, 5, got.CurrentStock)
}

func TestUndoDelete_RecreatesEntity(t *testing.T) {
	db := dbtest.New(t)
	p := dbtest.Product(t, db, "SKU-1", 7, 5, "2.00")
	require.NoError(t, db.Delete(p).Error)
	require.NoError(t, actor.Log(db, EntityProduct, p.ID, models.AuditActionDelete, "Deleted product", p, nil))

	require.NoError(t, UndoLog(db, lastLog(t, db).ID, actor.ID, actor.Name, time.Now()))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, "SKU-1", got.SKU)
	assert.Equal(t, 7, got.CurrentStock)
}

func TestUndo_RejectsUndoEntries(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, actor.Log(db, EntityProduct, 1, models.AuditActionUndo, "x", nil, nil))

	err := UndoLog(db, lastLog(t, db).ID, actor.ID, actor.Name, time.Now())
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	err = UndoLog(db, 999, actor.ID, actor.Name, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
