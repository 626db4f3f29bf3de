package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The ledger table is append-only: this repository exposes no update or
// delete path, corrections go through reversal movements.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append records a new movement row
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByKey lists movements for a ledger key ordered by occurrence time
func (r *GormStockMovementRepository) FindByKey(ctx context.Context, key inventory.LedgerKey) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND warehouse_id = ? AND product_id = ?", key.BranchID, key.WarehouseID, key.ProductID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

type balanceRow struct {
	Quantity       decimal.Decimal
	ValuatedAmount decimal.Decimal
}

// SumByKey folds signed quantities and valuated amounts for a ledger key.
// The sign is derived from the direction column so the fold matches
// StockMovement.SignedQuantity row for row.
func (r *GormStockMovementRepository) SumByKey(ctx context.Context, key inventory.LedgerKey, asOf *time.Time) (inventory.Balance, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(`COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0) AS quantity,
			COALESCE(SUM(CASE WHEN direction = 'IN' THEN valuated_amount ELSE -valuated_amount END), 0) AS valuated_amount`).
		Where("branch_id = ? AND warehouse_id = ? AND product_id = ?", key.BranchID, key.WarehouseID, key.ProductID)

	if asOf != nil {
		query = query.Where("occurred_at <= ?", *asOf)
	}

	var row balanceRow
	if err := query.Scan(&row).Error; err != nil {
		return inventory.Balance{}, err
	}
	return inventory.Balance{
		Quantity:       row.Quantity,
		ValuatedAmount: row.ValuatedAmount,
	}, nil
}

// FindReversal returns the movement reversing the given original, if any
func (r *GormStockMovementRepository) FindReversal(ctx context.Context, originalID uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "reversal_of = ?", originalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}
