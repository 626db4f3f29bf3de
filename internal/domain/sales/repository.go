package sales

import (
	"context"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for sales order persistence
type OrderRepository interface {
	// FindByID finds an order with its items, without scope filtering.
	// Callers must check branch access on the result.
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindAll lists orders visible to the principal
	FindAll(ctx context.Context, tctx tenant.Context, filter shared.Filter) ([]SalesOrder, int64, error)

	// Create persists a new order with its items
	Create(ctx context.Context, order *SalesOrder) error

	// Save persists order changes with an optimistic version check
	Save(ctx context.Context, order *SalesOrder) error

	// SaveWithTransition persists the order with an optimistic version
	// check and appends the transition record in the same transaction
	SaveWithTransition(ctx context.Context, order *SalesOrder, record *lifecycle.TransitionRecord) error

	// History lists the transition log for an order, oldest first
	History(ctx context.Context, orderID uuid.UUID) ([]lifecycle.TransitionRecord, error)
}
