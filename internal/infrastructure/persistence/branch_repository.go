package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBranchRepository implements BranchRepository using GORM.
// Branches are the scope roots themselves, so no branch filtering applies.
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by its ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Branch, error) {
	var branch tenant.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindByCode finds a branch by its unique code
func (r *GormBranchRepository) FindByCode(ctx context.Context, code string) (*tenant.Branch, error) {
	var branch tenant.Branch
	if err := r.db.WithContext(ctx).First(&branch, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindAll lists branches
func (r *GormBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tenant.Branch, int64, error) {
	base := r.db.WithContext(ctx).Model(&tenant.Branch{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("(code ILIKE ? OR name ILIKE ?)", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, BranchSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var branches []tenant.Branch
	if err := query.Find(&branches).Error; err != nil {
		return nil, 0, err
	}
	return branches, total, nil
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *tenant.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// Delete soft-deletes a branch. Its rows remain for audit.
func (r *GormBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&tenant.Branch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
