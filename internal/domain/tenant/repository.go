package tenant

import (
	"context"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	FindByCode(ctx context.Context, code string) (*Branch, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Branch, int64, error)
	Save(ctx context.Context, branch *Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
}
