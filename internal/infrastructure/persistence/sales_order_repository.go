package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/persistence/branchscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists orders visible to the principal
func (r *GormOrderRepository) FindAll(ctx context.Context, tctx tenant.Context, filter shared.Filter) ([]sales.SalesOrder, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Scopes(branchscope.Scope(tctx))

	if filter.Search != "" {
		base = base.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Preload("Items")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var orders []sales.SalesOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create persists a new order with its items
func (r *GormOrderRepository) Create(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists order changes with an optimistic version check. Items are
// upserted alongside the header.
func (r *GormOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveHeader(tx, order); err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveWithTransition persists the order and its transition record in one
// transaction with an optimistic version check.
func (r *GormOrderRepository) SaveWithTransition(ctx context.Context, order *sales.SalesOrder, record *lifecycle.TransitionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveHeader(tx, order); err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

func (r *GormOrderRepository) saveHeader(tx *gorm.DB, order *sales.SalesOrder) error {
	result := tx.Model(order).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"total_amount":    order.TotalAmount,
			"discount_amount": order.DiscountAmount,
			"payable_amount":  order.PayableAmount,
			"status":          order.Status,
			"remark":          order.Remark,
			"confirmed_at":    order.ConfirmedAt,
			"fulfilled_at":    order.FulfilledAt,
			"cancelled_at":    order.CancelledAt,
			"version":         order.Version,
			"updated_at":      order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormOrderRepository) saveItems(tx *gorm.DB, order *sales.SalesOrder) error {
	if len(order.Items) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&order.Items).Error
}

// History lists the transition log for an order, oldest first
func (r *GormOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]lifecycle.TransitionRecord, error) {
	var records []lifecycle.TransitionRecord
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", sales.EntityType, orderID).
		Order("occurred_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
