package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKey identifies the (branch, warehouse, product) triple over which a
// balance is derived and concurrent writes are serialized.
type LedgerKey struct {
	BranchID    uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
}

// String renders the key for use in lock tables and cache keys
func (k LedgerKey) String() string {
	return k.BranchID.String() + ":" + k.WarehouseID.String() + ":" + k.ProductID.String()
}

// Balance is the derived stock position for a ledger key. It is computed by
// folding signed movements and is never persisted.
type Balance struct {
	Quantity       decimal.Decimal `json:"quantity"`
	ValuatedAmount decimal.Decimal `json:"valuatedAmount"`
}

// StockMovementRepository defines the interface for ledger persistence.
// The ledger is append-only: no update or delete operations exist.
type StockMovementRepository interface {
	// Append records a new movement row
	Append(ctx context.Context, movement *StockMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByKey lists movements for a ledger key ordered by occurrence time
	FindByKey(ctx context.Context, key LedgerKey) ([]StockMovement, error)

	// SumByKey folds signed quantities and valuated amounts for a ledger key,
	// optionally bounded by a timestamp for historical balance queries
	SumByKey(ctx context.Context, key LedgerKey, asOf *time.Time) (Balance, error)

	// FindReversal returns the movement reversing the given original, if any
	FindReversal(ctx context.Context, originalID uuid.UUID) (*StockMovement, error)
}
