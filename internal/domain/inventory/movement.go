package inventory

import (
	"time"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	// DirectionIn represents stock entering a warehouse (purchase, return, reversal of an out)
	DirectionIn Direction = "IN"
	// DirectionOut represents stock leaving a warehouse (sale, consumption, reversal of an in)
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Invert returns the opposite direction
func (d Direction) Invert() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Sign returns 1 for inbound and -1 for outbound movements
func (d Direction) Sign() int {
	if d == DirectionIn {
		return 1
	}
	return -1
}

// StockMovement is an immutable row of the stock ledger. Once created it is
// never mutated - corrections are issued as new, opposite-direction movements
// referencing the original. Balances are derived from the ledger, never stored.
type StockMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BranchID       *uuid.UUID      `gorm:"type:uuid;index:idx_stock_movement_key,priority:1"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_key,priority:2"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_key,priority:3"`
	ProductName    string          `gorm:"type:varchar(100)"` // Denormalized for readable messages and audit rows
	Direction      Direction       `gorm:"type:varchar(10);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction carries the sign
	ValuatedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Monetary value attributed to the movement
	Code           string          `gorm:"type:varchar(50);not null;index"`
	Notes          string          `gorm:"type:varchar(255)"`
	ReversalOf     *uuid.UUID      `gorm:"type:uuid;index"` // Original movement when this is a correction
	CreatedBy      uuid.UUID       `gorm:"type:uuid"`
	OccurredAt     time.Time       `gorm:"type:timestamptz;not null;index:idx_stock_movement_key,priority:4"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// ScopeBranchID returns the owning branch for access checks
func (m *StockMovement) ScopeBranchID() *uuid.UUID {
	return m.BranchID
}

// SignedQuantity returns the quantity with direction applied
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// SignedValuatedAmount returns the valuated amount with direction applied
func (m *StockMovement) SignedValuatedAmount() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.ValuatedAmount.Neg()
	}
	return m.ValuatedAmount
}

// IsReversal returns true when this movement corrects an earlier one
func (m *StockMovement) IsReversal() bool {
	return m.ReversalOf != nil
}

// NewStockMovement creates an immutable ledger row
func NewStockMovement(
	branchID uuid.UUID,
	warehouseID uuid.UUID,
	productID uuid.UUID,
	direction Direction,
	quantity decimal.Decimal,
	valuatedAmount decimal.Decimal,
	code string,
	createdBy uuid.UUID,
) (*StockMovement, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewBusinessError("INVALID_DIRECTION", "Movement direction must be IN or OUT")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewBusinessError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if valuatedAmount.IsNegative() {
		return nil, shared.NewBusinessError("INVALID_AMOUNT", "Valuated amount cannot be negative")
	}
	if code == "" {
		return nil, shared.NewBusinessError("INVALID_CODE", "Movement code cannot be empty")
	}

	now := time.Now()
	return &StockMovement{
		ID:             uuid.New(),
		BranchID:       &branchID,
		WarehouseID:    warehouseID,
		ProductID:      productID,
		Direction:      direction,
		Quantity:       quantity,
		ValuatedAmount: valuatedAmount,
		Code:           code,
		CreatedBy:      createdBy,
		OccurredAt:     now,
		CreatedAt:      now,
	}, nil
}

// WithNotes sets free-form notes on the movement before it is recorded
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithProductName sets the human-readable product name
func (m *StockMovement) WithProductName(name string) *StockMovement {
	m.ProductName = name
	return m
}

// ProductLabel returns the product name, falling back to the product ID
func (m *StockMovement) ProductLabel() string {
	if m.ProductName != "" {
		return m.ProductName
	}
	return m.ProductID.String()
}

// WithOccurredAt overrides the movement timestamp (backdated entries)
func (m *StockMovement) WithOccurredAt(t time.Time) *StockMovement {
	m.OccurredAt = t
	return m
}
