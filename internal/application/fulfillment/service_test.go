package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	svc         *Service
	ledger      *inventory.Ledger
	orders      *persistence.GormOrderRepository
	tctx        tenant.Context
	branchID    uuid.UUID
	warehouseID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&sales.SalesOrder{},
		&sales.OrderItem{},
		&inventory.StockMovement{},
		&lifecycle.TransitionRecord{},
	))

	orders := persistence.NewGormOrderRepository(db)
	ledger := inventory.NewLedger(persistence.NewGormStockMovementRepository(db))
	branchID := uuid.New()
	return &fixture{
		svc:         NewService(orders, ledger),
		ledger:      ledger,
		orders:      orders,
		tctx:        tenant.NewContext(uuid.New(), branchID),
		branchID:    branchID,
		warehouseID: uuid.New(),
	}
}

func (f *fixture) seedStock(t *testing.T, productID uuid.UUID, quantity, amount int64) {
	t.Helper()
	_, err := f.ledger.Record(context.Background(), f.tctx, inventory.MovementInput{
		WarehouseID:    f.warehouseID,
		ProductID:      productID,
		Direction:      inventory.DirectionIn,
		Quantity:       decimal.NewFromInt(quantity),
		ValuatedAmount: decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
}

type orderLine struct {
	productID uuid.UUID
	quantity  int64
}

func (f *fixture) confirmedOrder(t *testing.T, lines ...orderLine) *sales.SalesOrder {
	t.Helper()
	order, err := sales.NewSalesOrder(f.branchID, "SO-001", uuid.New(), f.warehouseID)
	require.NoError(t, err)
	for _, line := range lines {
		require.NoError(t, order.AddItem(line.productID, "Widget", decimal.NewFromInt(line.quantity), decimal.NewFromInt(100)))
	}
	require.NoError(t, f.orders.Create(context.Background(), order))

	record, err := order.Confirm(f.tctx.UserID)
	require.NoError(t, err)
	require.NoError(t, f.orders.SaveWithTransition(context.Background(), order, record))
	return order
}

func (f *fixture) balance(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	balance, err := f.ledger.Balance(context.Background(), f.tctx, f.warehouseID, productID, nil)
	require.NoError(t, err)
	return balance.Quantity
}

func TestFulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("records one outbound movement per line", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.New()
		f.seedStock(t, productID, 10, 1000)
		order := f.confirmedOrder(t, orderLine{productID: productID, quantity: 4})

		record, err := f.svc.Fulfill(ctx, f.tctx, order)
		require.NoError(t, err)
		assert.Equal(t, "FULFILLED", record.ToState)

		saved, err := f.orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, sales.OrderStatusFulfilled, saved.Status)
		require.NotNil(t, saved.FulfilledAt)

		assert.True(t, f.balance(t, productID).Equal(decimal.NewFromInt(6)), "got %s", f.balance(t, productID))
	})

	t.Run("insufficient stock blocks fulfillment", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.New()
		f.seedStock(t, productID, 2, 200)
		order := f.confirmedOrder(t, orderLine{productID: productID, quantity: 5})

		_, err := f.svc.Fulfill(ctx, f.tctx, order)
		require.Error(t, err)

		var bizErr *shared.BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, "INSUFFICIENT_STOCK", bizErr.Code)

		// The stored order must still be confirmed and the stock untouched
		saved, err := f.orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, sales.OrderStatusConfirmed, saved.Status)
		assert.True(t, f.balance(t, productID).Equal(decimal.NewFromInt(2)))
	})

	t.Run("partial failure reverses earlier movements", func(t *testing.T) {
		f := newFixture(t)
		stocked := uuid.New()
		unstocked := uuid.New()
		f.seedStock(t, stocked, 10, 1000)
		order := f.confirmedOrder(t,
			orderLine{productID: stocked, quantity: 2},
			orderLine{productID: unstocked, quantity: 1})

		_, err := f.svc.Fulfill(ctx, f.tctx, order)
		require.Error(t, err)

		// The movement for the stocked line was appended and then reversed
		assert.True(t, f.balance(t, stocked).Equal(decimal.NewFromInt(10)), "got %s", f.balance(t, stocked))
	})

	t.Run("draft orders cannot be fulfilled", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.New()
		f.seedStock(t, productID, 10, 1000)

		order, err := sales.NewSalesOrder(f.branchID, "SO-002", uuid.New(), f.warehouseID)
		require.NoError(t, err)
		require.NoError(t, order.AddItem(productID, "Widget", decimal.NewFromInt(1), decimal.NewFromInt(100)))
		require.NoError(t, f.orders.Create(ctx, order))

		_, err = f.svc.Fulfill(ctx, f.tctx, order)
		var bizErr *shared.BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, "INVALID_TRANSITION", bizErr.Code)
		assert.True(t, f.balance(t, productID).Equal(decimal.NewFromInt(10)))
	})

	t.Run("acting branch must own the order", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.New()
		f.seedStock(t, productID, 10, 1000)
		order := f.confirmedOrder(t, orderLine{productID: productID, quantity: 1})

		other := tenant.NewContext(uuid.New(), uuid.New())
		_, err := f.svc.Fulfill(ctx, other, order)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
