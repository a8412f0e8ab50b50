package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mondejar-101/erpsample/internal/models"

	"gorm.io/gorm"
)

// Input describes a notification to create. RelatedID and RelatedType are
// optional and point at the entity that triggered it.
type Input struct {
	Title       string
	Message     string
	Type        models.NotificationType
	Priority    models.Priority
	UserID      *uint
	RelatedID   *uint
	RelatedType string
}

type AlertKind string

const (
	AlertPR      AlertKind = "PR"
	AlertPO      AlertKind = "PO"
	AlertInvoice AlertKind = "Invoice"
)

func Create(db *gorm.DB, in Input) (*models.Notification, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, &models.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", in.Priority)}
	}
	n := models.Notification{
		Title:             in.Title,
		Message:           in.Message,
		Type:              in.Type,
		Priority:          in.Priority,
		UserID:            in.UserID,
		RelatedObjectID:   in.RelatedID,
		RelatedObjectType: in.RelatedType,
	}
	if err := db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

// createUnlessUnread skips the insert when an unread notification of the
// same type already points at the same object.
func createUnlessUnread(db *gorm.DB, in Input) (*models.Notification, bool, error) {
	var existing models.Notification
	err := db.Where("notification_type = ? AND related_object_type = ? AND related_object_id = ? AND is_read = ?",
		in.Type, in.RelatedType, in.RelatedID, false).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up notification: %w", err)
	}
	n, err := Create(db, in)
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// ProcurementAlert records a purchase request, purchase order or invoice
// alert for the order. The order's Supplier must be loaded.
func ProcurementAlert(db *gorm.DB, order *models.ProcurementOrder, kind AlertKind) (*models.Notification, error) {
	in := Input{RelatedID: &order.ID, RelatedType: models.ObjectProcurementOrder, Priority: models.PriorityMedium}
	if order.Status == models.OrderPending {
		in.Priority = models.PriorityHigh
	}
	amount := order.TotalAmount.StringFixed(2)

	switch kind {
	case AlertPR:
		in.Type = models.NotificationPRAlert
		in.Title = fmt.Sprintf("Purchase Request Created: %s", order.OrderNumber)
		in.Message = fmt.Sprintf("A new purchase request has been created for %s with total amount $%s", order.Supplier.Name, amount)
	case AlertPO:
		in.Type = models.NotificationPOAlert
		in.Title = fmt.Sprintf("Purchase Order Status Update: %s", order.OrderNumber)
		in.Message = fmt.Sprintf("Purchase order %s status changed to %s", order.OrderNumber, order.Status.Label())
	case AlertInvoice:
		in.Type = models.NotificationInvoiceAlert
		in.Title = fmt.Sprintf("Invoice Received: %s", order.OrderNumber)
		in.Message = fmt.Sprintf("Invoice received for order %s from %s. Amount: $%s", order.OrderNumber, order.Supplier.Name, amount)
	default:
		return nil, fmt.Errorf("unknown alert kind %q", kind)
	}
	return Create(db, in)
}

// LowStockAlert reports whether a new notification was created.
func LowStockAlert(db *gorm.DB, p *models.Product) (bool, error) {
	priority := models.PriorityMedium
	if p.IsOutOfStock() {
		priority = models.PriorityHigh
	}
	_, created, err := createUnlessUnread(db, Input{
		Title:       fmt.Sprintf("Low Stock Alert: %s", p.Name),
		Message:     fmt.Sprintf("%s (SKU: %s) is below reorder level. Current stock: %d", p.Name, p.SKU, p.CurrentStock),
		Type:        models.NotificationLowStock,
		Priority:    priority,
		RelatedID:   &p.ID,
		RelatedType: models.ObjectProduct,
	})
	return created, err
}

// ParityAlert expects the parity's Product to be loaded.
func ParityAlert(db *gorm.DB, p *models.StockParity) (*models.Notification, error) {
	priority := models.PriorityMedium
	if p.ActualQuantity < p.ExpectedQuantity {
		priority = models.PriorityHigh
	}
	return Create(db, Input{
		Title:       fmt.Sprintf("Stock Parity Issue: %s", p.Product.Name),
		Message:     fmt.Sprintf("Counted %d of %s (SKU: %s), %d on record. Discrepancy: %+d", p.ActualQuantity, p.Product.Name, p.Product.SKU, p.ExpectedQuantity, p.Discrepancy),
		Type:        models.NotificationStockParity,
		Priority:    priority,
		RelatedID:   &p.ID,
		RelatedType: models.ObjectStockParity,
	})
}

func RatingAlert(db *gorm.DB, s *models.Supplier) (*models.Notification, error) {
	status := s.PerformanceStatus()
	priority := models.PriorityLow
	if status == models.PerformancePoor {
		priority = models.PriorityHigh
	}
	return Create(db, Input{
		Title:       fmt.Sprintf("Supplier Rating Update: %s", s.Name),
		Message:     fmt.Sprintf("%s is now rated %s/5.0 (performance: %s)", s.Name, s.Rating.StringFixed(2), status),
		Type:        models.NotificationSupplierRating,
		Priority:    priority,
		RelatedID:   &s.ID,
		RelatedType: models.ObjectSupplier,
	})
}

// ScanLowStock raises a low-stock alert for every low product that does not
// have an unread one yet and returns how many were created.
func ScanLowStock(db *gorm.DB) (int, error) {
	var products []models.Product
	if err := db.Where("current_stock <= reorder_level").Order("current_stock asc").Find(&products).Error; err != nil {
		return 0, fmt.Errorf("list low stock: %w", err)
	}
	created := 0
	for i := range products {
		ok, err := LowStockAlert(db, &products[i])
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

type DeadlineScan struct {
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
}

// ScanOrderDeadlines raises ORDER_OVERDUE for open orders past their expected
// delivery date and ORDER_DUE for those due within the window.
func ScanOrderDeadlines(db *gorm.DB, now time.Time, within time.Duration) (DeadlineScan, error) {
	var res DeadlineScan
	var orders []models.ProcurementOrder
	err := db.Preload("Supplier").
		Where("status NOT IN ? AND expected_delivery_date IS NOT NULL", []models.OrderStatus{models.OrderReceived, models.OrderCancelled}).
		Find(&orders).Error
	if err != nil {
		return res, fmt.Errorf("list open orders: %w", err)
	}

	dueBy := now.Add(within)
	for i := range orders {
		o := &orders[i]
		in := Input{RelatedID: &o.ID, RelatedType: models.ObjectProcurementOrder}
		switch {
		case o.IsOverdue(now):
			in.Type = models.NotificationOrderOverdue
			in.Priority = models.PriorityUrgent
			in.Title = fmt.Sprintf("Order Overdue: %s", o.OrderNumber)
			in.Message = fmt.Sprintf("Order %s from %s was expected on %s", o.OrderNumber, o.Supplier.Name, o.ExpectedDeliveryDate.Format("2006-01-02"))
		case !o.ExpectedDeliveryDate.After(dueBy):
			in.Type = models.NotificationOrderDue
			in.Priority = models.PriorityMedium
			in.Title = fmt.Sprintf("Order Due: %s", o.OrderNumber)
			in.Message = fmt.Sprintf("Order %s from %s is due on %s", o.OrderNumber, o.Supplier.Name, o.ExpectedDeliveryDate.Format("2006-01-02"))
		default:
			continue
		}
		_, created, err := createUnlessUnread(db, in)
		if err != nil {
			return res, err
		}
		if !created {
			continue
		}
		if in.Type == models.NotificationOrderOverdue {
			res.Overdue++
		} else {
			res.DueSoon++
		}
	}
	return res, nil
}

// visibleTo limits a query to broadcast notifications and those addressed to userID.
func visibleTo(db *gorm.DB, userID uint) *gorm.DB {
	return db.Where("(user_id IS NULL OR user_id = ?)", userID)
}

func MarkRead(db *gorm.DB, id, userID uint, now time.Time) (*models.Notification, error) {
	var n models.Notification
	if err := visibleTo(db, userID).First(&n, id).Error; err != nil {
		return nil, fmt.Errorf("load notification %d: %w", id, err)
	}
	if n.MarkRead(now) {
		if err := db.Save(&n).Error; err != nil {
			return nil, fmt.Errorf("save notification %d: %w", id, err)
		}
	}
	return &n, nil
}

func MarkAllRead(db *gorm.DB, userID uint, now time.Time) (int64, error) {
	res := visibleTo(db.Model(&models.Notification{}), userID).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func UnreadCount(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := visibleTo(db.Model(&models.Notification{}), userID).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// Query returns notifications visible to userID with the given read flag,
// newest first.
func Query(db *gorm.DB, userID uint, read bool) *gorm.DB {
	return visibleTo(db.Model(&models.Notification{}), userID).
		Where("is_read = ?", read).
		Order("created_at desc").Order("id desc")
}
