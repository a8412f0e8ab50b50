package procurement

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/notification"
	"github.com/Mondejar-101/erpsample/internal/stock"
	"github.com/Mondejar-101/erpsample/internal/supplier"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", apierror.ErrConflict)
	ErrOrderLocked       = fmt.Errorf("%w: order can no longer be changed", apierror.ErrConflict)
)

type ItemInput struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"` // defaults to the product price
}

type OrderInput struct {
	OrderNumber          string
	SupplierID           uint
	Status               models.OrderStatus
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Notes                string
	Items                []ItemInput
	CreatedByID          *uint
}

// GenerateOrderNumber returns PO-YYYYMMDD-XXXXXXXX.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), suffix)
}

// buildItems resolves item inputs against their products. Every product may
// appear once.
func buildItems(tx *gorm.DB, inputs []ItemInput) ([]models.ProcurementOrderItem, error) {
	if len(inputs) == 0 {
		return nil, &models.ValidationError{Field: "items", Message: "an order needs at least one item"}
	}

	ids := make([]uint, 0, len(inputs))
	seen := make(map[uint]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.ProductID] {
			return nil, &models.ValidationError{Field: "items", Message: fmt.Sprintf("product %d is listed twice", in.ProductID)}
		}
		seen[in.ProductID] = true
		ids = append(ids, in.ProductID)
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.ProcurementOrderItem, 0, len(inputs))
	for _, in := range inputs {
		item := models.ProcurementOrderItem{ProductID: in.ProductID, Quantity: in.Quantity}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, &models.ValidationError{Field: "product_id", Message: fmt.Sprintf("%d does not exist", in.ProductID)}
		}
		item.UnitPrice = p.UnitPrice
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func CreateOrder(db *gorm.DB, in OrderInput, now time.Time) (*models.ProcurementOrder, error) {
	var order *models.ProcurementOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = createOrder(tx, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// createOrder raises a single PR_ALERT whatever the initial status. Orders
// created as RECEIVED are booked into stock straight away.
func createOrder(tx *gorm.DB, in OrderInput, now time.Time) (*models.ProcurementOrder, error) {
	if in.Status == "" {
		in.Status = models.OrderPending
	}
	if !in.Status.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.SupplierID == 0 {
		return nil, &models.ValidationError{Field: "supplier_id", Message: "is required"}
	}

	var sup models.Supplier
	if err := tx.First(&sup, in.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.ValidationError{Field: "supplier_id", Message: fmt.Sprintf("%d does not exist", in.SupplierID)}
		}
		return nil, fmt.Errorf("load supplier %d: %w", in.SupplierID, err)
	}

	items, err := buildItems(tx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &models.ProcurementOrder{
		OrderNumber:          strings.TrimSpace(in.OrderNumber),
		SupplierID:           sup.ID,
		Status:               in.Status,
		OrderDate:            now,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		CreatedByID:          in.CreatedByID,
		Notes:                in.Notes,
		Items:                items,
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	if order.OrderNumber == "" {
		order.OrderNumber = GenerateOrderNumber(now)
	}
	order.TotalAmount = order.CalculateTotal()

	var taken int64
	if err := tx.Model(&models.ProcurementOrder{}).Where("order_number = ?", order.OrderNumber).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check order number: %w", err)
	}
	if taken > 0 {
		return nil, fmt.Errorf("%w: order number %s already exists", apierror.ErrConflict, order.OrderNumber)
	}

	if err := tx.Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Supplier = sup

	if _, err := notification.ProcurementAlert(tx, order, notification.AlertPR); err != nil {
		return nil, err
	}
	if order.Status == models.OrderReceived {
		if err := receive(tx, order, in.CreatedByID, now); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// receive books every item's outstanding quantity into stock and refreshes
// the supplier's delivery stats. order.Items must be loaded.
func receive(tx *gorm.DB, order *models.ProcurementOrder, userID *uint, now time.Time) error {
	if order.ActualDeliveryDate == nil {
		order.ActualDeliveryDate = &now
		if err := tx.Model(&models.ProcurementOrder{}).Where("id = ?", order.ID).Update("actual_delivery_date", now).Error; err != nil {
			return fmt.Errorf("set delivery date of %s: %w", order.OrderNumber, err)
		}
	}

	for i := range order.Items {
		item := &order.Items[i]
		qty := item.Outstanding()
		if qty == 0 {
			continue
		}
		_, err := stock.Book(tx, stock.Movement{
			ProductID:       item.ProductID,
			Type:            models.TransactionIn,
			Quantity:        qty,
			ReferenceNumber: order.OrderNumber,
			Notes:           "Received on purchase order " + order.OrderNumber,
			UserID:          userID,
		})
		if err != nil {
			return err
		}
		item.ReceivedQuantity = item.Quantity
		if err := tx.Model(&models.ProcurementOrderItem{}).Where("id = ?", item.ID).Update("received_quantity", item.ReceivedQuantity).Error; err != nil {
			return fmt.Errorf("update received quantity: %w", err)
		}
	}
	return supplier.RefreshDeliveryStats(tx, order.SupplierID)
}

func loadForUpdate(tx *gorm.DB, id uint) (*models.ProcurementOrder, error) {
	var o models.ProcurementOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	if err := tx.Where("order_id = ?", o.ID).Order("id asc").Find(&o.Items).Error; err != nil {
		return nil, fmt.Errorf("load items of order %d: %w", id, err)
	}
	if err := tx.First(&o.Supplier, o.SupplierID).Error; err != nil {
		return nil, fmt.Errorf("load supplier of order %d: %w", id, err)
	}
	return &o, nil
}

// ChangeStatus moves the order along its lifecycle. A PO_ALERT follows every
// change; receiving also books stock and raises an INVOICE_ALERT.
func ChangeStatus(db *gorm.DB, id uint, next models.OrderStatus, userID *uint, now time.Time) (*models.ProcurementOrder, error) {
	if !next.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", next)}
	}
	var order *models.ProcurementOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
		}

		order.Status = next
		if err := tx.Model(&models.ProcurementOrder{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
			return fmt.Errorf("update status of %s: %w", order.OrderNumber, err)
		}
		if next == models.OrderReceived {
			if err := receive(tx, order, userID, now); err != nil {
				return err
			}
		}

		if _, err := notification.ProcurementAlert(tx, order, notification.AlertPO); err != nil {
			return err
		}
		if next == models.OrderReceived {
			if _, err := notification.ProcurementAlert(tx, order, notification.AlertInvoice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

type UpdateInput struct {
	Notes                *string
	ExpectedDeliveryDate *time.Time
	Items                []ItemInput // nil leaves items untouched
}

// UpdateOrder edits an open order. Items can only be replaced while the
// order is PENDING.
func UpdateOrder(db *gorm.DB, id uint, in UpdateInput) (*models.ProcurementOrder, error) {
	var order *models.ProcurementOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = loadForUpdate(tx, id); err != nil {
			return err
		}
		if !order.Status.Open() {
			return fmt.Errorf("%w: %s is %s", ErrOrderLocked, order.OrderNumber, order.Status.Label())
		}
		if in.Items != nil && order.Status != models.OrderPending {
			return fmt.Errorf("%w: items of %s can only change while pending", ErrOrderLocked, order.OrderNumber)
		}

		updates := map[string]any{}
		if in.Notes != nil {
			order.Notes = *in.Notes
			updates["notes"] = order.Notes
		}
		if in.ExpectedDeliveryDate != nil {
			order.ExpectedDeliveryDate = in.ExpectedDeliveryDate
			updates["expected_delivery_date"] = *in.ExpectedDeliveryDate
		}

		if in.Items != nil {
			items, err := buildItems(tx, in.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.ProcurementOrderItem{}).Error; err != nil {
				return fmt.Errorf("clear items of %s: %w", order.OrderNumber, err)
			}
			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create items of %s: %w", order.OrderNumber, err)
			}
			order.Items = items
			order.TotalAmount = order.CalculateTotal()
			updates["total_amount"] = order.TotalAmount
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.ProcurementOrder{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update order %s: %w", order.OrderNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func openStatuses() []models.OrderStatus {
	return []models.OrderStatus{models.OrderPending, models.OrderApproved, models.OrderOrdered}
}

// OverdueOrders lists open orders whose expected delivery date has passed.
func OverdueOrders(db *gorm.DB, now time.Time) ([]models.ProcurementOrder, error) {
	var orders []models.ProcurementOrder
	err := db.Preload("Supplier").
		Where("status IN ? AND expected_delivery_date IS NOT NULL AND expected_delivery_date < ?", openStatuses(), now).
		Order("expected_delivery_date asc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue orders: %w", err)
	}
	return orders, nil
}

type OrderFilter struct {
	Status models.OrderStatus
	Search string
}

// ListOrders returns the filtered order query, newest order date first.
func ListOrders(db *gorm.DB, f OrderFilter) *gorm.DB {
	q := db.Model(&models.ProcurementOrder{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(order_number) LIKE ? OR supplier_id IN (?))", pat,
			db.Model(&models.Supplier{}).Select("id").Where("LOWER(name) LIKE ?", pat))
	}
	return q.Order("order_date desc").Order("id desc")
}

type SkippedProduct struct {
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku"`
	Reason    string `json:"reason"`
}

type ReorderResult struct {
	Orders  []*models.ProcurementOrder `json:"orders"`
	Skipped []SkippedProduct           `json:"skipped"`
}

// ReorderFromSuggestions drafts one PENDING order per preferred supplier for
// the low-stock products. Products without a supplier, or already on an
// open order, are skipped.
func ReorderFromSuggestions(db *gorm.DB, userID *uint, now time.Time) (*ReorderResult, error) {
	res := &ReorderResult{Orders: []*models.ProcurementOrder{}, Skipped: []SkippedProduct{}}
	err := db.Transaction(func(tx *gorm.DB) error {
		suggestions, err := stock.LowStockSuggestions(tx)
		if err != nil {
			return err
		}

		var onOrder []uint
		err = tx.Model(&models.ProcurementOrderItem{}).
			Joins("JOIN procurement_orders ON procurement_orders.id = procurement_order_items.order_id").
			Where("procurement_orders.status IN ?", openStatuses()).
			Distinct().Pluck("procurement_order_items.product_id", &onOrder).Error
		if err != nil {
			return fmt.Errorf("list products on order: %w", err)
		}
		pending := make(map[uint]bool, len(onOrder))
		for _, id := range onOrder {
			pending[id] = true
		}

		bySupplier := map[uint][]ItemInput{}
		for _, s := range suggestions {
			switch {
			case s.SupplierID == nil:
				res.Skipped = append(res.Skipped, SkippedProduct{ProductID: s.ProductID, SKU: s.SKU, Reason: "no preferred supplier"})
			case pending[s.ProductID]:
				res.Skipped = append(res.Skipped, SkippedProduct{ProductID: s.ProductID, SKU: s.SKU, Reason: "already on an open order"})
			default:
				bySupplier[*s.SupplierID] = append(bySupplier[*s.SupplierID], ItemInput{ProductID: s.ProductID, Quantity: s.SuggestedQuantity})
			}
		}

		supplierIDs := make([]uint, 0, len(bySupplier))
		for id := range bySupplier {
			supplierIDs = append(supplierIDs, id)
		}
		sort.Slice(supplierIDs, func(i, j int) bool { return supplierIDs[i] < supplierIDs[j] })

		for _, id := range supplierIDs {
			order, err := createOrder(tx, OrderInput{
				SupplierID:  id,
				Status:      models.OrderPending,
				Notes:       "Drafted from low stock suggestions",
				Items:       bySupplier[id],
				CreatedByID: userID,
			}, now)
			if err != nil {
				return err
			}
			res.Orders = append(res.Orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
