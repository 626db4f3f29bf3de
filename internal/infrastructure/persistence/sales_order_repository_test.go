package persistence

import (
	"context"
	"testing"

	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, repo *GormOrderRepository, branchID uuid.UUID, number string) *sales.SalesOrder {
	t.Helper()
	order, err := sales.NewSalesOrder(branchID, number, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.AddItem(uuid.New(), "Widget", decimal.NewFromInt(2), decimal.NewFromInt(100)))
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestGormOrderRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and find preloads items", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		order := createOrder(t, repo, uuid.New(), "SO-001")

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "SO-001", found.OrderNumber)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Widget", found.Items[0].ProductName)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("not found", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find all scopes by branch", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		branchA := uuid.New()
		createOrder(t, repo, branchA, "SO-A1")
		createOrder(t, repo, uuid.New(), "SO-B1")

		orders, total, err := repo.FindAll(ctx, tenant.NewContext(uuid.New(), branchA), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "SO-A1", orders[0].OrderNumber)
		require.Len(t, orders[0].Items, 1)
	})

	t.Run("save upserts new items", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		order := createOrder(t, repo, uuid.New(), "SO-001")

		require.NoError(t, order.AddItem(uuid.New(), "Gadget", decimal.NewFromInt(1), decimal.NewFromInt(50)))
		order.IncrementVersion()
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("stale save loses cleanly", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		order := createOrder(t, repo, uuid.New(), "SO-001")

		require.NoError(t, order.ApplyAmountDiscount(decimal.NewFromInt(10)))
		order.IncrementVersion()
		require.NoError(t, repo.Save(ctx, order))

		// Same version again simulates a writer that read before the first save
		err := repo.Save(ctx, order)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("save with transition writes the log", func(t *testing.T) {
		repo := NewGormOrderRepository(newTestDB(t))
		order := createOrder(t, repo, uuid.New(), "SO-001")

		record, err := order.Confirm(uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithTransition(ctx, order, record))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, sales.OrderStatusConfirmed, found.Status)
		require.NotNil(t, found.ConfirmedAt)

		history, err := repo.History(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "CONFIRMED", history[0].ToState)
		assert.Equal(t, sales.EntityType, history[0].EntityType)
	})
}
