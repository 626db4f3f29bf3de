package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementInput carries the write-path parameters for recording a movement
type MovementInput struct {
	WarehouseID    uuid.UUID
	ProductID      uuid.UUID
	ProductName    string // Used for human-readable error messages
	Direction      Direction
	Quantity       decimal.Decimal
	ValuatedAmount decimal.Decimal
	Code           string // Generated when empty
	Notes          string
}

// Ledger is the append-only stock movement engine. Every outbound record is
// checked against the derived balance, and the check plus the append run under
// a per-key lock so concurrent outbound movements cannot both observe a stale
// balance and overdraw stock.
type Ledger struct {
	movements StockMovementRepository
	keys      keyedMutex
}

// NewLedger creates a ledger engine over a movement repository
func NewLedger(movements StockMovementRepository) *Ledger {
	return &Ledger{movements: movements}
}

// Record validates and appends a movement. Outbound movements fail with
// InsufficientStock when the derived balance cannot cover the quantity.
// Prior rows are never updated or deleted.
func (l *Ledger) Record(ctx context.Context, tctx tenant.Context, in MovementInput) (*StockMovement, error) {
	branchID, err := tctx.RequireBranch()
	if err != nil {
		return nil, err
	}

	code := in.Code
	if code == "" {
		code = generateMovementCode(in.Direction)
	}

	movement, err := NewStockMovement(
		branchID, in.WarehouseID, in.ProductID,
		in.Direction, in.Quantity, in.ValuatedAmount,
		code, tctx.UserID,
	)
	if err != nil {
		return nil, err
	}
	movement.WithNotes(in.Notes).WithProductName(in.ProductName)

	key := LedgerKey{BranchID: branchID, WarehouseID: in.WarehouseID, ProductID: in.ProductID}
	unlock := l.keys.lock(key.String())
	defer unlock()

	if in.Direction == DirectionOut {
		balance, err := l.movements.SumByKey(ctx, key, nil)
		if err != nil {
			return nil, fmt.Errorf("derive balance for %s: %w", key, err)
		}
		if balance.Quantity.LessThan(in.Quantity) {
			return nil, shared.NewInsufficientStockError(productLabel(in), balance.Quantity, in.Quantity)
		}
	}

	if err := l.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("append movement %s: %w", movement.Code, err)
	}
	return movement, nil
}

// Balance derives the stock position for a (product, warehouse, branch) triple
// by folding all movements, optionally bounded by a timestamp.
func (l *Ledger) Balance(ctx context.Context, tctx tenant.Context, warehouseID, productID uuid.UUID, asOf *time.Time) (Balance, error) {
	branchID, err := tctx.RequireBranch()
	if err != nil {
		return Balance{}, err
	}
	key := LedgerKey{BranchID: branchID, WarehouseID: warehouseID, ProductID: productID}
	return l.movements.SumByKey(ctx, key, asOf)
}

// Reverse appends an opposite-direction movement cancelling the original.
// The original row is never mutated, and a movement can only be reversed once.
func (l *Ledger) Reverse(ctx context.Context, tctx tenant.Context, movementID uuid.UUID) (*StockMovement, error) {
	original, err := l.movements.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if err := tenant.AssertAccessible(original, tctx); err != nil {
		return nil, err
	}
	if existing, err := l.movements.FindReversal(ctx, original.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, shared.NewBusinessError("ALREADY_REVERSED",
			fmt.Sprintf("Movement %s has already been reversed by %s", original.Code, existing.Code))
	}

	if original.BranchID == nil {
		return nil, shared.NewBusinessError("INVALID_MOVEMENT", "Movement has no owning branch")
	}

	reversal, err := NewStockMovement(
		*original.BranchID, original.WarehouseID, original.ProductID,
		original.Direction.Invert(), original.Quantity, original.ValuatedAmount,
		"REV-"+original.Code, tctx.UserID,
	)
	if err != nil {
		return nil, err
	}
	reversal.ReversalOf = &original.ID
	reversal.WithNotes(fmt.Sprintf("Reversal of %s", original.Code)).WithProductName(original.ProductName)

	key := LedgerKey{BranchID: *original.BranchID, WarehouseID: original.WarehouseID, ProductID: original.ProductID}
	unlock := l.keys.lock(key.String())
	defer unlock()

	// Reversing an inbound movement removes stock, so it passes through the
	// same balance guard as any other outbound record.
	if reversal.Direction == DirectionOut {
		balance, err := l.movements.SumByKey(ctx, key, nil)
		if err != nil {
			return nil, fmt.Errorf("derive balance for %s: %w", key, err)
		}
		if balance.Quantity.LessThan(reversal.Quantity) {
			return nil, shared.NewInsufficientStockError(original.ProductLabel(), balance.Quantity, reversal.Quantity)
		}
	}

	if err := l.movements.Append(ctx, reversal); err != nil {
		return nil, fmt.Errorf("append reversal %s: %w", reversal.Code, err)
	}
	return reversal, nil
}

func productLabel(in MovementInput) string {
	if in.ProductName != "" {
		return in.ProductName
	}
	return in.ProductID.String()
}

func generateMovementCode(d Direction) string {
	prefix := "IN"
	if d == DirectionOut {
		prefix = "OUT"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("MV-%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}

// keyedMutex serializes Record/Reverse per ledger key. Lock entries are kept
// for the process lifetime; cardinality is bounded by active ledger keys.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
