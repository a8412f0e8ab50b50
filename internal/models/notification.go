package models

import "time"

type NotificationType string

const (
	NotificationLowStock       NotificationType = "LOW_STOCK"
	NotificationOrderDue       NotificationType = "ORDER_DUE"
	NotificationOrderOverdue   NotificationType = "ORDER_OVERDUE"
	NotificationStockParity    NotificationType = "STOCK_PARITY"
	NotificationSupplierRating NotificationType = "SUPPLIER_RATING"
	NotificationPRAlert        NotificationType = "PR_ALERT"
	NotificationPOAlert        NotificationType = "PO_ALERT"
	NotificationInvoiceAlert   NotificationType = "INVOICE_ALERT"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Related object type names stored on notifications and audit logs.
const (
	ObjectProduct          = "Product"
	ObjectProcurementOrder = "ProcurementOrder"
	ObjectStockParity      = "StockParity"
	ObjectSupplier         = "Supplier"
)

type Notification struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Title             string           `gorm:"size:200;not null" json:"title"`
	Message           string           `gorm:"type:text;not null" json:"message"`
	Type              NotificationType `gorm:"column:notification_type;size:20;index;not null" json:"notification_type"`
	Priority          Priority         `gorm:"size:10;not null" json:"priority"`
	IsRead            bool             `gorm:"index;not null" json:"is_read"`
	ReadAt            *time.Time       `json:"read_at"`
	UserID            *uint            `gorm:"index" json:"user_id"`
	User              *User            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RelatedObjectID   *uint            `gorm:"index" json:"related_object_id"`
	RelatedObjectType string           `gorm:"size:50" json:"related_object_type"`
	Timestamps
}

// MarkRead is idempotent: ReadAt keeps the time of the first read.
// It reports whether the notification changed.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &now
	return true
}
