package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderOrdered   OrderStatus = "ORDERED"
	OrderReceived  OrderStatus = "RECEIVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// progress orders the forward path; CANCELLED sits outside it.
var progress = map[OrderStatus]int{
	OrderPending:  0,
	OrderApproved: 1,
	OrderOrdered:  2,
	OrderReceived: 3,
}

var statusLabels = map[OrderStatus]string{
	OrderPending:   "Pending",
	OrderApproved:  "Approved",
	OrderOrdered:   "Ordered",
	OrderReceived:  "Received",
	OrderCancelled: "Cancelled",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Open reports whether the order can still change status.
func (s OrderStatus) Open() bool {
	return s != OrderReceived && s != OrderCancelled
}

// CanTransitionTo allows forward moves along the progress path (steps may be
// skipped) and cancellation of any open order.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Open() || !next.Valid() || next == s {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return progress[next] > progress[s]
}

// OrderStatuses lists every status in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderApproved, OrderOrdered, OrderReceived, OrderCancelled}
}

type ProcurementOrder struct {
	ID                   uint                   `gorm:"primaryKey" json:"id"`
	OrderNumber          string                 `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	SupplierID           uint                   `gorm:"index;not null" json:"supplier_id"`
	Supplier             Supplier               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Status               OrderStatus            `gorm:"size:20;index;not null" json:"status"`
	OrderDate            time.Time              `gorm:"index;not null" json:"order_date"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time             `json:"actual_delivery_date"`
	TotalAmount          decimal.Decimal        `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CreatedByID          *uint                  `json:"created_by_id"`
	CreatedBy            *User                  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Notes                string                 `gorm:"type:text" json:"notes"`
	Items                []ProcurementOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Timestamps
}

func (o *ProcurementOrder) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	return total
}

func (o *ProcurementOrder) IsOverdue(now time.Time) bool {
	if o.ExpectedDeliveryDate == nil || !o.Status.Open() {
		return false
	}
	return now.After(*o.ExpectedDeliveryDate)
}

// DeliveredOnTime is false for orders that are not received yet.
func (o *ProcurementOrder) DeliveredOnTime() bool {
	if o.Status != OrderReceived || o.ActualDeliveryDate == nil || o.ExpectedDeliveryDate == nil {
		return false
	}
	return !o.ActualDeliveryDate.After(*o.ExpectedDeliveryDate)
}

type ProcurementOrderItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"uniqueIndex:idx_order_product;not null" json:"order_id"`
	ProductID        uint            `gorm:"uniqueIndex:idx_order_product;not null" json:"product_id"`
	Product          Product         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	ReceivedQuantity int             `gorm:"not null" json:"received_quantity"`
}

func (i *ProcurementOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *ProcurementOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

func (i *ProcurementOrderItem) Outstanding() int {
	if i.IsFullyReceived() {
		return 0
	}
	return i.Quantity - i.ReceivedQuantity
}

func (i *ProcurementOrderItem) Validate() error {
	if i.ProductID == 0 {
		return invalid("product_id", "is required")
	}
	if i.Quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if i.UnitPrice.IsNegative() {
		return invalid("unit_price", "must not be negative")
	}
	if i.ReceivedQuantity < 0 {
		return invalid("received_quantity", "must not be negative")
	}
	return nil
}
