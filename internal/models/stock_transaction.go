package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionIn         TransactionType = "IN"
	TransactionOut        TransactionType = "OUT"
	TransactionAdjustment TransactionType = "ADJ"
	TransactionReturn     TransactionType = "RET"
)

// ErrInsufficientStock is returned when a movement would drive stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIn, TransactionOut, TransactionAdjustment, TransactionReturn:
		return true
	}
	return false
}

// StockTransaction is a single stock movement. For ADJ the quantity is the
// counted stock level the product is set to.
type StockTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProductID       uint            `gorm:"index;not null" json:"product_id"`
	Product         Product         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type            TransactionType `gorm:"column:transaction_type;size:3;not null" json:"transaction_type"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	StockBefore     int             `gorm:"not null" json:"stock_before"`
	StockAfter      int             `gorm:"not null" json:"stock_after"`
	ReferenceNumber string          `gorm:"size:100;index" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	UserID          *uint           `json:"user_id"`
	User            *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Timestamps
}

func (t *StockTransaction) Validate() error {
	if !t.Type.Valid() {
		return invalid("transaction_type", "unknown type %q", t.Type)
	}
	if t.Type == TransactionAdjustment {
		if t.Quantity < 0 {
			return invalid("quantity", "must not be negative")
		}
		return nil
	}
	if t.Quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	return nil
}

// Apply returns the stock level after the movement.
func (t *StockTransaction) Apply(current int) (int, error) {
	switch t.Type {
	case TransactionIn, TransactionReturn:
		return current + t.Quantity, nil
	case TransactionOut:
		if current-t.Quantity < 0 {
			return current, fmt.Errorf("%w: %d on hand, %d requested", ErrInsufficientStock, current, t.Quantity)
		}
		return current - t.Quantity, nil
	case TransactionAdjustment:
		return t.Quantity, nil
	}
	return current, invalid("transaction_type", "unknown type %q", t.Type)
}

// StockParity records a discrepancy between the recorded and the counted stock.
type StockParity struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProductID        uint       `gorm:"index;not null" json:"product_id"`
	Product          Product    `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	ExpectedQuantity int        `gorm:"not null" json:"expected_quantity"`
	ActualQuantity   int        `gorm:"not null" json:"actual_quantity"`
	Discrepancy      int        `gorm:"not null" json:"discrepancy"`
	Reason           string     `gorm:"type:text" json:"reason"`
	Resolved         bool       `gorm:"index;not null" json:"resolved"`
	ResolvedByID     *uint      `json:"resolved_by_id"`
	ResolvedBy       *User      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	Timestamps
}

func (p *StockParity) BeforeSave(tx *gorm.DB) error {
	p.Discrepancy = p.ActualQuantity - p.ExpectedQuantity
	return nil
}

// Resolve marks the parity resolved. It reports false when it already was.
func (p *StockParity) Resolve(userID *uint, now time.Time) bool {
	if p.Resolved {
		return false
	}
	p.Resolved = true
	p.ResolvedByID = userID
	p.ResolvedAt = &now
	return true
}
