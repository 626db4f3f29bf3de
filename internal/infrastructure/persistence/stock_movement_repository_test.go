package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/rental"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tenant.Branch{},
		&inventory.StockMovement{},
		&rental.RentalContract{},
		&sales.SalesOrder{},
		&sales.OrderItem{},
		&lifecycle.TransitionRecord{},
	))
	return db
}

func appendMovement(t *testing.T, repo *GormStockMovementRepository, branchID, warehouseID, productID uuid.UUID, direction inventory.Direction, quantity, amount int64, occurredAt time.Time) *inventory.StockMovement {
	t.Helper()
	movement, err := inventory.NewStockMovement(
		branchID, warehouseID, productID, direction,
		decimal.NewFromInt(quantity), decimal.NewFromInt(amount),
		"MV-TEST-"+uuid.NewString()[:8], uuid.New())
	require.NoError(t, err)
	movement.WithOccurredAt(occurredAt)
	require.NoError(t, repo.Append(context.Background(), movement))
	return movement
}

func TestGormStockMovementRepository(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()
	key := inventory.LedgerKey{BranchID: branchID, WarehouseID: warehouseID, ProductID: productID}

	t.Run("append and find by id", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		movement := appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionIn, 10, 1000, time.Now())

		found, err := repo.FindByID(ctx, movement.ID)
		require.NoError(t, err)
		assert.Equal(t, movement.Code, found.Code)
		assert.Equal(t, inventory.DirectionIn, found.Direction)
	})

	t.Run("find by id not found", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sum folds signed movements", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		now := time.Now()
		appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionIn, 10, 1000, now)
		appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionOut, 3, 300, now.Add(time.Minute))
		// Different product, must not leak into the fold
		appendMovement(t, repo, branchID, warehouseID, uuid.New(), inventory.DirectionIn, 99, 9900, now)

		balance, err := repo.SumByKey(ctx, key, nil)
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(7)), "got %s", balance.Quantity)
		assert.True(t, balance.ValuatedAmount.Equal(decimal.NewFromInt(700)), "got %s", balance.ValuatedAmount)
	})

	t.Run("sum bounded by as-of timestamp", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		now := time.Now()
		appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionIn, 10, 1000, now)
		appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionOut, 3, 300, now.Add(time.Hour))

		cutoff := now.Add(time.Minute)
		balance, err := repo.SumByKey(ctx, key, &cutoff)
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(10)), "got %s", balance.Quantity)
	})

	t.Run("empty key folds to zero", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		balance, err := repo.SumByKey(ctx, key, nil)
		require.NoError(t, err)
		assert.True(t, balance.Quantity.IsZero())
		assert.True(t, balance.ValuatedAmount.IsZero())
	})

	t.Run("find by key orders by occurrence", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		now := time.Now()
		second := appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionOut, 2, 200, now.Add(time.Hour))
		first := appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionIn, 5, 500, now)

		movements, err := repo.FindByKey(ctx, key)
		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, first.ID, movements[0].ID)
		assert.Equal(t, second.ID, movements[1].ID)
	})

	t.Run("find reversal", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		original := appendMovement(t, repo, branchID, warehouseID, productID, inventory.DirectionIn, 5, 500, time.Now())

		found, err := repo.FindReversal(ctx, original.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		reversal, err := inventory.NewStockMovement(
			branchID, warehouseID, productID, inventory.DirectionOut,
			decimal.NewFromInt(5), decimal.NewFromInt(500),
			"REV-"+original.Code, uuid.New())
		require.NoError(t, err)
		reversal.ReversalOf = &original.ID
		require.NoError(t, repo.Append(ctx, reversal))

		found, err = repo.FindReversal(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, reversal.ID, found.ID)
	})
}
