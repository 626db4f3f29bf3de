package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/rental"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/persistence/branchscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.RentalContract, error) {
	var contract rental.RentalContract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// FindByNumber finds a contract by its unique contract number
func (r *GormContractRepository) FindByNumber(ctx context.Context, contractNumber string) (*rental.RentalContract, error) {
	var contract rental.RentalContract
	if err := r.db.WithContext(ctx).First(&contract, "contract_number = ?", contractNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// FindAll lists contracts visible to the principal
func (r *GormContractRepository) FindAll(ctx context.Context, tctx tenant.Context, filter shared.Filter) ([]rental.RentalContract, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&rental.RentalContract{}).
		Scopes(branchscope.Scope(tctx))

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("(contract_number ILIKE ? OR customer_name ILIKE ?)", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, ContractSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var contracts []rental.RentalContract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// Create persists a new contract
func (r *GormContractRepository) Create(ctx context.Context, contract *rental.RentalContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// SaveWithTransition persists the contract and its transition record in one
// transaction. The version predicate makes concurrent transitions on the same
// contract lose cleanly instead of double-applying.
func (r *GormContractRepository) SaveWithTransition(ctx context.Context, contract *rental.RentalContract, record *lifecycle.TransitionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(contract).
			Where("id = ? AND version = ?", contract.ID, contract.Version-1).
			Updates(map[string]interface{}{
				"status":         contract.Status,
				"start_date":     contract.StartDate,
				"end_date":       contract.EndDate,
				"suspended_at":   contract.SuspendedAt,
				"terminated_at":  contract.TerminatedAt,
				"terminate_note": contract.TerminateNote,
				"version":        contract.Version,
				"updated_at":     contract.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return tx.Create(record).Error
	})
}

// History lists the transition log for a contract, oldest first
func (r *GormContractRepository) History(ctx context.Context, contractID uuid.UUID) ([]lifecycle.TransitionRecord, error) {
	var records []lifecycle.TransitionRecord
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", rental.EntityType, contractID).
		Order("occurred_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
