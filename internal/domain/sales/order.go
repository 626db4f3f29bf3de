package sales

import (
	"fmt"
	"time"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

var orderMachine = lifecycle.NewMachine(map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusFulfilled, OrderStatusCancelled},
})

// Machine exposes the order transition table for read-only queries
func Machine() *lifecycle.Machine[OrderStatus] {
	return orderMachine
}

// EntityType identifies sales orders in the transition log
const EntityType = "sales_order"

// MaxPercentDiscount is the default cap for percentage discounts
var MaxPercentDiscount = decimal.NewFromInt(50)

// OrderItem is a line item in a sales order
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(100);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "sales_order_items"
}

// SalesOrder is a customer order with branch scope and a machine-governed lifecycle
type SalesOrder struct {
	shared.BranchAggregateRoot
	OrderNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PayableAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Remark         string          `gorm:"type:varchar(255)"`
	ConfirmedAt    *time.Time      `gorm:"type:timestamptz"`
	FulfilledAt    *time.Time      `gorm:"type:timestamptz"`
	CancelledAt    *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// CurrentState implements lifecycle.Stateful
func (o *SalesOrder) CurrentState() OrderStatus {
	return o.Status
}

// SetState implements lifecycle.Stateful
func (o *SalesOrder) SetState(s OrderStatus) {
	o.Status = s
}

// NewSalesOrder creates an order in DRAFT status
func NewSalesOrder(branchID uuid.UUID, orderNumber string, customerID, warehouseID uuid.UUID) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewBusinessError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &SalesOrder{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		WarehouseID:         warehouseID,
		TotalAmount:         decimal.Zero,
		DiscountAmount:      decimal.Zero,
		PayableAmount:       decimal.Zero,
		Status:              OrderStatusDraft,
	}, nil
}

// AddItem appends a line item. Only DRAFT orders may change.
func (o *SalesOrder) AddItem(productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewBusinessError("INVALID_STATE",
			fmt.Sprintf("Cannot modify items of an order in %s status", o.Status))
	}
	if productID == uuid.Nil {
		return shared.NewBusinessError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewBusinessError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewBusinessError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	o.Items = append(o.Items, OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	o.recalculate()
	return nil
}

// ApplyPercentDiscount applies a percentage discount capped by MaxPercentDiscount
func (o *SalesOrder) ApplyPercentDiscount(percent decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewBusinessError("INVALID_STATE",
			fmt.Sprintf("Cannot discount an order in %s status", o.Status))
	}
	if percent.IsNegative() {
		return shared.NewBusinessError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if percent.GreaterThan(MaxPercentDiscount) {
		return shared.NewInvalidDiscountError(percent, MaxPercentDiscount, shared.DiscountKindPercent)
	}
	o.DiscountAmount = o.TotalAmount.Mul(percent).Div(decimal.NewFromInt(100)).Round(4)
	o.recalculate()
	return nil
}

// ApplyAmountDiscount applies a fixed discount capped by the order total
func (o *SalesOrder) ApplyAmountDiscount(amount decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewBusinessError("INVALID_STATE",
			fmt.Sprintf("Cannot discount an order in %s status", o.Status))
	}
	if amount.IsNegative() {
		return shared.NewBusinessError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if amount.GreaterThan(o.TotalAmount) {
		return shared.NewInvalidDiscountError(amount, o.TotalAmount, shared.DiscountKindAmount)
	}
	o.DiscountAmount = amount
	o.recalculate()
	return nil
}

// Confirm locks the order for fulfilment
func (o *SalesOrder) Confirm(actor uuid.UUID) (*lifecycle.TransitionRecord, error) {
	if len(o.Items) == 0 {
		return nil, shared.NewBusinessError("EMPTY_ORDER", "Cannot confirm an order without items")
	}
	record, err := orderMachine.Transition(o, EntityType, o.ID, OrderStatusConfirmed, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return record, nil
}

// Fulfill marks the order shipped; the caller records the outbound ledger movements
func (o *SalesOrder) Fulfill(actor uuid.UUID) (*lifecycle.TransitionRecord, error) {
	record, err := orderMachine.Transition(o, EntityType, o.ID, OrderStatusFulfilled, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	o.FulfilledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return record, nil
}

// Cancel cancels the order before fulfilment
func (o *SalesOrder) Cancel(actor uuid.UUID, remark string) (*lifecycle.TransitionRecord, error) {
	record, err := orderMachine.Transition(o, EntityType, o.ID, OrderStatusCancelled, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	o.CancelledAt = &now
	if remark != "" {
		o.Remark = remark
	}
	o.UpdatedAt = now
	o.IncrementVersion()
	return record, nil
}

func (o *SalesOrder) recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
	o.PayableAmount = total.Sub(o.DiscountAmount)
	o.UpdatedAt = time.Now()
}
