package rental

import (
	"context"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
)

// ContractRepository defines the interface for rental contract persistence
type ContractRepository interface {
	// FindByID finds a contract by its ID without scope filtering.
	// Callers must check branch access on the result.
	FindByID(ctx context.Context, id uuid.UUID) (*RentalContract, error)

	// FindByNumber finds a contract by its unique contract number
	FindByNumber(ctx context.Context, contractNumber string) (*RentalContract, error)

	// FindAll lists contracts visible to the principal
	FindAll(ctx context.Context, tctx tenant.Context, filter shared.Filter) ([]RentalContract, int64, error)

	// Create persists a new contract
	Create(ctx context.Context, contract *RentalContract) error

	// SaveWithTransition persists the contract with an optimistic version
	// check and appends the transition record in the same transaction
	SaveWithTransition(ctx context.Context, contract *RentalContract, record *lifecycle.TransitionRecord) error

	// History lists the transition log for a contract, oldest first
	History(ctx context.Context, contractID uuid.UUID) ([]lifecycle.TransitionRecord, error)
}
