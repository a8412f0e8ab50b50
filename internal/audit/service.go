package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EntityCategory = "category"
	EntityProduct  = "product"
	EntitySupplier = "supplier"
)

var ErrAlreadyUndone = fmt.Errorf("%w: this change has already been undone", apierror.ErrConflict)

// Actor is the user a change is attributed to.
type Actor struct {
	ID   uint
	Name string
}

// Log records a change made by a.
func (a Actor) Log(db *gorm.DB, entityType string, entityID uint, action models.AuditAction, description string, before, after any) error {
	return WriteLog(db, LogOptions{
		UserID:      a.ID,
		UserName:    a.Name,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	})
}

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func snapshot(v any) string {
	// text columns hold "null" rather than an empty string when absent
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// UndoLog reverts the change recorded by the log entry and records the
// undo as a log entry of its own.
func UndoLog(db *gorm.DB, logID, userID uint, userName string, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, logID).Error; err != nil {
			return fmt.Errorf("load audit log %d: %w", logID, err)
		}
		if entry.IsUndone {
			return ErrAlreadyUndone
		}

		switch entry.Action {
		case models.AuditActionCreate:
			if err := deleteEntity(tx, entry.EntityType, entry.EntityID); err != nil {
				return err
			}
		case models.AuditActionUpdate, models.AuditActionDelete:
			// both put the "before" snapshot back, recreating the row if needed
			if err := restoreEntity(tx, entry.EntityType, entry.EntityID, entry.BeforeData); err != nil {
				return err
			}
		default:
			return &models.ValidationError{Field: "action", Message: fmt.Sprintf("%s entries cannot be undone", entry.Action)}
		}

		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("mark audit log %d undone: %w", logID, err)
		}

		return WriteLog(tx, LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: "Undone: " + entry.Description,
			Before:      json.RawMessage(entry.AfterData),
			After:       json.RawMessage(entry.BeforeData),
		})
	})
}

func newEntity(entityType string) (any, error) {
	switch entityType {
	case EntityCategory:
		return &models.Category{}, nil
	case EntityProduct:
		return &models.Product{}, nil
	case EntitySupplier:
		return &models.Supplier{}, nil
	}
	return nil, &models.ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", entityType)}
}

func deleteEntity(tx *gorm.DB, entityType string, id uint) error {
	v, err := newEntity(entityType)
	if err != nil {
		return err
	}
	if err := tx.Delete(v, id).Error; err != nil {
		return fmt.Errorf("delete %s %d: %w", entityType, id, err)
	}
	return nil
}

// derivedColumns are maintained by stock movements and supplier evaluations,
// so undoing an edit leaves them alone.
func derivedColumns(entityType string) []string {
	switch entityType {
	case EntityProduct:
		return []string{"current_stock"}
	case EntitySupplier:
		return []string{"rating", "total_orders", "on_time_delivery_rate"}
	}
	return nil
}

// restoreEntity writes a JSON snapshot back. An existing row gets its
// editable columns restored; a deleted row is inserted again in full.
func restoreEntity(tx *gorm.DB, entityType string, entityID uint, data string) error {
	v, err := newEntity(entityType)
	if err != nil {
		return err
	}
	if data == "" || data == "null" {
		return errors.New("audit log has no snapshot to restore")
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", entityType, err)
	}

	current, _ := newEntity(entityType)
	var found int64
	if err := tx.Model(current).Where("id = ?", entityID).Count(&found).Error; err != nil {
		return fmt.Errorf("look up %s %d: %w", entityType, entityID, err)
	}
	if found == 0 {
		if err := tx.Omit(clause.Associations).Create(v).Error; err != nil {
			return fmt.Errorf("recreate %s %d: %w", entityType, entityID, err)
		}
		return nil
	}

	omit := append([]string{clause.Associations}, derivedColumns(entityType)...)
	err = tx.Model(v).Where("id = ?", entityID).Select("*").Omit(omit...).Updates(v).Error
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", entityType, entityID, err)
	}
	return nil
}
