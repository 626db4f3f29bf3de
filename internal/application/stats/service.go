// Package stats computes branch-scoped aggregate figures for dashboards.
// Results are memoized in the stats cache under version-fingerprinted keys,
// so they stay fresh without explicit invalidation.
package stats

import (
	"context"
	"time"

	"github.com/erp/branchcore/internal/domain/rental"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/cache"
	"github.com/erp/branchcore/internal/infrastructure/persistence/branchscope"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractStats summarizes rental contracts within the principal's scope
type ContractStats struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"by_status"`
	ActiveMonthlyRun decimal.Decimal  `json:"active_monthly_run"`
	ComputedAt       time.Time        `json:"computed_at"`
}

// OrderStats summarizes sales orders within the principal's scope
type OrderStats struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"by_status"`
	FulfilledRevenue decimal.Decimal  `json:"fulfilled_revenue"`
	ComputedAt       time.Time        `json:"computed_at"`
}

// MovementStats summarizes the stock ledger within the principal's scope
type MovementStats struct {
	MovementCount  int64           `json:"movement_count"`
	StockQuantity  decimal.Decimal `json:"stock_quantity"`
	StockValuation decimal.Decimal `json:"stock_valuation"`
	ComputedAt     time.Time       `json:"computed_at"`
}

// Service computes and caches aggregate statistics
type Service struct {
	db    *gorm.DB
	cache *cache.StatsCache
}

// NewService creates a stats service
func NewService(db *gorm.DB, statsCache *cache.StatsCache) *Service {
	return &Service{db: db, cache: statsCache}
}

type statusCountRow struct {
	Status string
	Count  int64
}

// Contracts returns contract statistics for the principal's scope
func (s *Service) Contracts(ctx context.Context, tctx tenant.Context) (ContractStats, error) {
	key, err := s.cache.VersionKey(ctx, "contracts", tctx)
	if err != nil {
		return ContractStats{}, err
	}
	return cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) (ContractStats, error) {
		stats := ContractStats{ByStatus: make(map[string]int64), ComputedAt: time.Now()}

		var rows []statusCountRow
		if err := s.db.WithContext(ctx).
			Model(&rental.RentalContract{}).
			Scopes(branchscope.Scope(tctx)).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error; err != nil {
			return ContractStats{}, err
		}
		for _, row := range rows {
			stats.ByStatus[row.Status] = row.Count
			stats.Total += row.Count
		}

		var run decimal.Decimal
		if err := s.db.WithContext(ctx).
			Model(&rental.RentalContract{}).
			Scopes(branchscope.Scope(tctx)).
			Where("status = ?", rental.ContractStatusActive).
			Select("COALESCE(SUM(monthly_rate), 0)").
			Scan(&run).Error; err != nil {
			return ContractStats{}, err
		}
		stats.ActiveMonthlyRun = run
		return stats, nil
	})
}

// Orders returns sales order statistics for the principal's scope
func (s *Service) Orders(ctx context.Context, tctx tenant.Context) (OrderStats, error) {
	key, err := s.cache.VersionKey(ctx, "orders", tctx)
	if err != nil {
		return OrderStats{}, err
	}
	return cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) (OrderStats, error) {
		stats := OrderStats{ByStatus: make(map[string]int64), ComputedAt: time.Now()}

		var rows []statusCountRow
		if err := s.db.WithContext(ctx).
			Model(&sales.SalesOrder{}).
			Scopes(branchscope.Scope(tctx)).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error; err != nil {
			return OrderStats{}, err
		}
		for _, row := range rows {
			stats.ByStatus[row.Status] = row.Count
			stats.Total += row.Count
		}

		var revenue decimal.Decimal
		if err := s.db.WithContext(ctx).
			Model(&sales.SalesOrder{}).
			Scopes(branchscope.Scope(tctx)).
			Where("status = ?", sales.OrderStatusFulfilled).
			Select("COALESCE(SUM(payable_amount), 0)").
			Scan(&revenue).Error; err != nil {
			return OrderStats{}, err
		}
		stats.FulfilledRevenue = revenue
		return stats, nil
	})
}

type movementAggregateRow struct {
	Count     int64
	Quantity  decimal.Decimal
	Valuation decimal.Decimal
}

// Movements returns stock ledger statistics for the principal's scope.
// Quantity and valuation are signed folds over the append-only ledger.
func (s *Service) Movements(ctx context.Context, tctx tenant.Context) (MovementStats, error) {
	key, err := s.cache.VersionKey(ctx, "movements", tctx)
	if err != nil {
		return MovementStats{}, err
	}
	return cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) (MovementStats, error) {
		var row movementAggregateRow
		if err := s.db.WithContext(ctx).
			Table("stock_movements").
			Scopes(branchscope.Scope(tctx)).
			Select(`COUNT(*) AS count,
				COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0) AS quantity,
				COALESCE(SUM(CASE WHEN direction = 'IN' THEN valuated_amount ELSE -valuated_amount END), 0) AS valuation`).
			Scan(&row).Error; err != nil {
			return MovementStats{}, err
		}
		return MovementStats{
			MovementCount:  row.Count,
			StockQuantity:  row.Quantity,
			StockValuation: row.Valuation,
			ComputedAt:     time.Now(),
		}, nil
	})
}
