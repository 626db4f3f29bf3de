// Package fulfillment coordinates the handover between the sales order
// lifecycle and the stock ledger: fulfilling an order records one outbound
// movement per line item.
package fulfillment

import (
	"context"
	"fmt"

	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service fulfills confirmed sales orders against the stock ledger
type Service struct {
	orders sales.OrderRepository
	ledger *inventory.Ledger
}

// NewService creates a fulfillment service
func NewService(orders sales.OrderRepository, ledger *inventory.Ledger) *Service {
	return &Service{orders: orders, ledger: ledger}
}

// Fulfill transitions the order to FULFILLED and records an outbound ledger
// movement per line item. The transition is validated before any movement is
// appended; if a later step fails, already-appended movements are reversed.
// The caller must have access-checked the order.
func (s *Service) Fulfill(ctx context.Context, tctx tenant.Context, order *sales.SalesOrder) (*lifecycle.TransitionRecord, error) {
	branchID, err := tctx.RequireBranch()
	if err != nil {
		return nil, err
	}
	if order.BranchID != nil && *order.BranchID != branchID {
		return nil, shared.ErrForbidden
	}

	record, err := order.Fulfill(tctx.UserID)
	if err != nil {
		return nil, err
	}

	var appended []*inventory.StockMovement
	for i, item := range order.Items {
		movement, err := s.ledger.Record(ctx, tctx, inventory.MovementInput{
			WarehouseID:    order.WarehouseID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Direction:      inventory.DirectionOut,
			Quantity:       item.Quantity,
			ValuatedAmount: item.Amount,
			Code:           fmt.Sprintf("%s-L%d", order.OrderNumber, i+1),
			Notes:          fmt.Sprintf("Fulfillment of order %s", order.OrderNumber),
		})
		if err != nil {
			s.compensate(ctx, tctx, appended)
			return nil, err
		}
		appended = append(appended, movement)
	}

	if err := s.orders.SaveWithTransition(ctx, order, record); err != nil {
		s.compensate(ctx, tctx, appended)
		return nil, err
	}
	return record, nil
}

// compensate reverses movements appended before a failed fulfillment.
// Reversal failures are logged, not returned: the caller already has the
// primary error and the ledger stays auditable either way.
func (s *Service) compensate(ctx context.Context, tctx tenant.Context, movements []*inventory.StockMovement) {
	for _, movement := range movements {
		if _, err := s.ledger.Reverse(ctx, tctx, movement.ID); err != nil {
			logger.L(ctx).Error("failed to reverse movement after fulfillment failure",
				zap.String("movement_code", movement.Code),
				zap.Error(err))
		}
	}
}
