package stock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrDuplicateSKU = fmt.Errorf("%w: sku already in use", apierror.ErrConflict)

// ProductInput carries the writable product fields. Nil fields are left
// untouched on update. A zero CategoryID or SupplierID clears the link.
type ProductInput struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	SKU             *string          `json:"sku"`
	CategoryID      *uint            `json:"category_id"`
	SupplierID      *uint            `json:"supplier_id"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	ReorderLevel    *int             `json:"reorder_level"`
	ReorderQuantity *int             `json:"reorder_quantity"`
	CurrentStock    *int             `json:"current_stock"`
	UnitOfMeasure   *string          `json:"unit_of_measure"`
	Location        *string          `json:"location"`
	IsActive        *bool            `json:"is_active"`
}

type ProductFilter struct {
	Search     string
	Status     string // "low" or "out"
	CategoryID uint
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// ListProducts returns the filtered product query ordered by name.
func ListProducts(db *gorm.DB, f ProductFilter) *gorm.DB {
	q := db.Model(&models.Product{})
	if f.Search != "" {
		pat := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pat, pat)
	}
	switch f.Status {
	case "low":
		q = lowStock(q)
	case "out":
		q = q.Where("current_stock = 0")
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	return q.Order("name asc").Order("id asc")
}

func optionalRef(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.CategoryID != nil {
		p.CategoryID = optionalRef(in.CategoryID)
		p.Category = nil
	}
	if in.SupplierID != nil {
		p.SupplierID = optionalRef(in.SupplierID)
	}
	if in.UnitPrice != nil {
		p.UnitPrice = *in.UnitPrice
	}
	if in.ReorderLevel != nil {
		p.ReorderLevel = *in.ReorderLevel
	}
	if in.ReorderQuantity != nil {
		p.ReorderQuantity = *in.ReorderQuantity
	}
	if in.UnitOfMeasure != nil {
		p.UnitOfMeasure = strings.TrimSpace(*in.UnitOfMeasure)
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func checkProduct(tx *gorm.DB, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&models.Product{}).Where("sku = ? AND id <> ?", p.SKU, p.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if n > 0 {
		return ErrDuplicateSKU
	}
	if p.CategoryID != nil {
		if err := exists(tx, &models.Category{}, *p.CategoryID, "category_id"); err != nil {
			return err
		}
	}
	if p.SupplierID != nil {
		if err := exists(tx, &models.Supplier{}, *p.SupplierID, "supplier_id"); err != nil {
			return err
		}
	}
	return nil
}

// exists turns a dangling reference into a validation error.
func exists(tx *gorm.DB, model any, id uint, field string) error {
	err := tx.Select("id").First(model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ValidationError{Field: field, Message: fmt.Sprintf("%d does not exist", id)}
	}
	return err
}

func CreateProduct(db *gorm.DB, actor audit.Actor, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		BaseEntity:      models.BaseEntity{IsActive: true},
		ReorderLevel:    models.DefaultReorderLevel,
		ReorderQuantity: models.DefaultReorderQuantity,
		UnitOfMeasure:   models.DefaultUnitOfMeasure,
	}
	in.apply(p)
	if in.CurrentStock != nil {
		p.CurrentStock = *in.CurrentStock
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkProduct(tx, p); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return actor.Log(tx, audit.EntityProduct, p.ID, models.AuditActionCreate,
			fmt.Sprintf("Created product %s (%s)", p.Name, p.SKU), nil, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct rejects stock level changes: those go through stock
// transactions so every change is accounted for.
func UpdateProduct(db *gorm.DB, actor audit.Actor, id uint, in ProductInput) (*models.Product, error) {
	if in.CurrentStock != nil {
		return nil, &models.ValidationError{Field: "current_stock", Message: "record a stock transaction to change stock"}
	}
	var p models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return fmt.Errorf("load product %d: %w", id, err)
		}
		before := p
		in.apply(&p)
		if err := checkProduct(tx, &p); err != nil {
			return err
		}
		if err := tx.Omit("Category", "Supplier").Save(&p).Error; err != nil {
			return fmt.Errorf("save product %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntityProduct, p.ID, models.AuditActionUpdate,
			fmt.Sprintf("Updated product %s (%s)", p.Name, p.SKU), before, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func DeleteProduct(db *gorm.DB, actor audit.Actor, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return fmt.Errorf("load product %d: %w", id, err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete product %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntityProduct, p.ID, models.AuditActionDelete,
			fmt.Sprintf("Deleted product %s (%s)", p.Name, p.SKU), p, nil)
	})
}

type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
}

func (in CategoryInput) apply(c *models.Category) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ParentID != nil {
		c.ParentID = optionalRef(in.ParentID)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

// checkCategory validates c and walks up from its parent so that no category
// ends up among its own ancestors.
func checkCategory(tx *gorm.DB, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for next := c.ParentID; next != nil; {
		var parent models.Category
		err := tx.Select("id", "parent_id").First(&parent, *next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ValidationError{Field: "parent_id", Message: fmt.Sprintf("%d does not exist", *next)}
		}
		if err != nil {
			return fmt.Errorf("load category %d: %w", *next, err)
		}
		if c.ID != 0 && parent.ID == c.ID {
			return &models.ValidationError{Field: "parent_id", Message: "would create a category cycle"}
		}
		next = parent.ParentID
	}
	return nil
}

func ListCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func CreateCategory(db *gorm.DB, actor audit.Actor, in CategoryInput) (*models.Category, error) {
	c := &models.Category{BaseEntity: models.BaseEntity{IsActive: true}}
	in.apply(c)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, c); err != nil {
			return err
		}
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return actor.Log(tx, audit.EntityCategory, c.ID, models.AuditActionCreate, "Created category "+c.Name, nil, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func UpdateCategory(db *gorm.DB, actor audit.Actor, id uint, in CategoryInput) (*models.Category, error) {
	var c models.Category
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return fmt.Errorf("load category %d: %w", id, err)
		}
		before := c
		in.apply(&c)
		if err := checkCategory(tx, &c); err != nil {
			return err
		}
		if err := tx.Omit("Parent", "Children").Save(&c).Error; err != nil {
			return fmt.Errorf("save category %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntityCategory, c.ID, models.AuditActionUpdate, "Updated category "+c.Name, before, c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func DeleteCategory(db *gorm.DB, actor audit.Actor, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, id).Error; err != nil {
			return fmt.Errorf("load category %d: %w", id, err)
		}
		// products keep existing without a category
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach products from category %d: %w", id, err)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntityCategory, c.ID, models.AuditActionDelete, "Deleted category "+c.Name, c, nil)
	})
}
