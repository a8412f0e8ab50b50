package supplier

import (
	"fmt"
	"strings"

	"github.com/Mondejar-101/erpsample/internal/audit"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierInput carries the writable supplier fields; nil means unchanged.
type SupplierInput struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	ContactPerson      *string          `json:"contact_person"`
	Email              *string          `json:"email"`
	Phone              *string          `json:"phone"`
	Address            *string          `json:"address"`
	Rating             *decimal.Decimal `json:"rating"`
	OnTimeDeliveryRate *decimal.Decimal `json:"on_time_delivery_rate"`
	QualityScore       *decimal.Decimal `json:"quality_score"`
	IsActive           *bool            `json:"is_active"`
}

func (in SupplierInput) apply(s *models.Supplier) {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.ContactPerson != nil {
		s.ContactPerson = strings.TrimSpace(*in.ContactPerson)
	}
	if in.Email != nil {
		s.Email = strings.TrimSpace(strings.ToLower(*in.Email))
	}
	if in.Phone != nil {
		s.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.Rating != nil {
		s.Rating = *in.Rating
	}
	if in.OnTimeDeliveryRate != nil {
		s.OnTimeDeliveryRate = *in.OnTimeDeliveryRate
	}
	if in.QualityScore != nil {
		s.QualityScore = *in.QualityScore
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
}

// ListSuppliers searches name and e-mail, best rated first.
func ListSuppliers(db *gorm.DB, search string, activeOnly bool) *gorm.DB {
	q := db.Model(&models.Supplier{})
	if search = strings.TrimSpace(search); search != "" {
		pat := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pat, pat)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return q.Order("rating desc").Order("name asc")
}

func CreateSupplier(db *gorm.DB, actor audit.Actor, in SupplierInput) (*models.Supplier, error) {
	s := &models.Supplier{
		BaseEntity:         models.BaseEntity{IsActive: true},
		Rating:             decimal.Zero,
		OnTimeDeliveryRate: decimal.Zero,
		QualityScore:       decimal.Zero,
	}
	in.apply(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return fmt.Errorf("create supplier: %w", err)
		}
		return actor.Log(tx, audit.EntitySupplier, s.ID, models.AuditActionCreate, "Created supplier "+s.Name, nil, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func UpdateSupplier(db *gorm.DB, actor audit.Actor, id uint, in SupplierInput) (*models.Supplier, error) {
	var s models.Supplier
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return fmt.Errorf("load supplier %d: %w", id, err)
		}
		before := s
		in.apply(&s)
		if err := s.Validate(); err != nil {
			return err
		}
		if err := tx.Save(&s).Error; err != nil {
			return fmt.Errorf("save supplier %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntitySupplier, s.ID, models.AuditActionUpdate, "Updated supplier "+s.Name, before, s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func DeleteSupplier(db *gorm.DB, actor audit.Actor, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var s models.Supplier
		if err := tx.First(&s, id).Error; err != nil {
			return fmt.Errorf("load supplier %d: %w", id, err)
		}
		if err := tx.Model(&models.Product{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return fmt.Errorf("detach products from supplier %d: %w", id, err)
		}
		if err := tx.Delete(&s).Error; err != nil {
			return fmt.Errorf("delete supplier %d: %w", id, err)
		}
		return actor.Log(tx, audit.EntitySupplier, s.ID, models.AuditActionDelete, "Deleted supplier "+s.Name, s, nil)
	})
}
