package stock

import (
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/notification"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientStock = models.ErrInsufficientStock

type ReorderSuggestion struct {
	ProductID         uint               `json:"product_id"`
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	SupplierID        *uint              `json:"supplier_id"`
	CurrentStock      int                `json:"current_stock"`
	ReorderLevel      int                `json:"reorder_level"`
	SuggestedQuantity int                `json:"suggested_quantity"`
	UnitPrice         decimal.Decimal    `json:"unit_price"`
	Status            models.StockStatus `json:"status"`
}

func lowStock(db *gorm.DB) *gorm.DB {
	return db.Where("current_stock <= reorder_level")
}

// LowStockProducts returns every product at or below its reorder level,
// emptiest first.
func LowStockProducts(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	err := lowStock(db).Preload("Category").Order("current_stock asc").Order("name asc").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	return products, nil
}

func OutOfStockProducts(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := db.Where("current_stock = 0").Preload("Category").Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list out of stock products: %w", err)
	}
	return products, nil
}

func LowStockSuggestions(db *gorm.DB) ([]ReorderSuggestion, error) {
	products, err := LowStockProducts(db)
	if err != nil {
		return nil, err
	}
	out := make([]ReorderSuggestion, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, ReorderSuggestion{
			ProductID:         p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			SupplierID:        p.SupplierID,
			CurrentStock:      p.CurrentStock,
			ReorderLevel:      p.ReorderLevel,
			SuggestedQuantity: p.ReorderQuantity,
			UnitPrice:         p.UnitPrice,
			Status:            p.StockStatus(),
		})
	}
	return out, nil
}

func UnresolvedParities(db *gorm.DB) ([]models.StockParity, error) {
	var parities []models.StockParity
	if err := db.Preload("Product").Where("resolved = ?", false).Order("created_at desc").Find(&parities).Error; err != nil {
		return nil, fmt.Errorf("list unresolved parities: %w", err)
	}
	return parities, nil
}

// Movement is a requested change to a product's stock.
type Movement struct {
	ProductID       uint
	Type            models.TransactionType
	Quantity        int
	ReferenceNumber string
	Notes           string
	UserID          *uint
}

// RecordTransaction applies m in its own transaction.
func RecordTransaction(db *gorm.DB, m Movement) (*models.StockTransaction, error) {
	var out *models.StockTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = Book(tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Book applies m using tx, which callers are expected to have opened. The
// product row is locked for the rest of the transaction. A LOW_STOCK
// notification is raised when the movement takes the product below its
// reorder level.
func Book(tx *gorm.DB, m Movement) (*models.StockTransaction, error) {
	t := &models.StockTransaction{
		ProductID:       m.ProductID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		UserID:          m.UserID,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var p models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, m.ProductID).Error; err != nil {
		return nil, fmt.Errorf("load product %d: %w", m.ProductID, err)
	}
	wasLow := p.IsLowStock()

	after, err := t.Apply(p.CurrentStock)
	if err != nil {
		return nil, err
	}
	t.StockBefore = p.CurrentStock
	t.StockAfter = after

	if err := tx.Create(t).Error; err != nil {
		return nil, fmt.Errorf("create stock transaction: %w", err)
	}
	if err := tx.Model(&p).Update("current_stock", after).Error; err != nil {
		return nil, fmt.Errorf("update stock of product %d: %w", p.ID, err)
	}
	p.CurrentStock = after

	if !wasLow && p.IsLowStock() {
		if _, err := notification.LowStockAlert(tx, &p); err != nil {
			return nil, err
		}
	}
	t.Product = p
	return t, nil
}

// RecordParity stores a stock count against the recorded stock and raises a
// STOCK_PARITY notification when they differ.
func RecordParity(db *gorm.DB, productID uint, counted int, reason string) (*models.StockParity, error) {
	if counted < 0 {
		return nil, &models.ValidationError{Field: "actual_quantity", Message: "must not be negative"}
	}
	parity := &models.StockParity{ProductID: productID, ActualQuantity: counted, Reason: reason}
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, productID).Error; err != nil {
			return fmt.Errorf("load product %d: %w", productID, err)
		}
		parity.ExpectedQuantity = p.CurrentStock
		if err := tx.Create(parity).Error; err != nil {
			return fmt.Errorf("create stock parity: %w", err)
		}
		parity.Product = p
		if parity.Discrepancy == 0 {
			return nil
		}
		_, err := notification.ParityAlert(tx, parity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return parity, nil
}

// ResolveParity marks the parity resolved. With adjust set, stock is set to
// the counted quantity through an ADJ transaction, which is returned.
// Resolving twice changes nothing.
func ResolveParity(db *gorm.DB, id uint, userID *uint, adjust bool, now time.Time) (*models.StockParity, *models.StockTransaction, error) {
	var parity models.StockParity
	var adj *models.StockTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Product").First(&parity, id).Error; err != nil {
			return fmt.Errorf("load stock parity %d: %w", id, err)
		}
		if !parity.Resolve(userID, now) {
			return nil
		}
		if err := tx.Omit(clause.Associations).Save(&parity).Error; err != nil {
			return fmt.Errorf("resolve stock parity %d: %w", id, err)
		}
		if !adjust || parity.Product.CurrentStock == parity.ActualQuantity {
			return nil
		}
		var err error
		adj, err = Book(tx, Movement{
			ProductID:       parity.ProductID,
			Type:            models.TransactionAdjustment,
			Quantity:        parity.ActualQuantity,
			ReferenceNumber: fmt.Sprintf("PARITY-%d", parity.ID),
			Notes:           "Stock count adjustment",
			UserID:          userID,
		})
		if err != nil {
			return err
		}
		parity.Product = adj.Product
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &parity, adj, nil
}
