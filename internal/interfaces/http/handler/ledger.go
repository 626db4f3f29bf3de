package handler

import (
	"time"

	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/telemetry"
	"github.com/erp/branchcore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler exposes the stock ledger operations
type LedgerHandler struct {
	BaseHandler
	ledger    *inventory.Ledger
	movements inventory.StockMovementRepository
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *inventory.Ledger, movements inventory.StockMovementRepository) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, movements: movements}
}

// Record handles POST /movements
func (h *LedgerHandler) Record(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	quantity, err := parseDecimal(req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}
	amount, err := parseDecimal(req.ValuatedAmount)
	if err != nil {
		h.BadRequest(c, "Invalid valuated_amount")
		return
	}

	ctx, span := telemetry.StartServiceSpan(c.Request.Context(), "ledger", "record")
	defer span.End()

	movement, err := h.ledger.Record(ctx, tctx, inventory.MovementInput{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		ProductName:    req.ProductName,
		Direction:      inventory.Direction(req.Direction),
		Quantity:       quantity,
		ValuatedAmount: amount,
		Code:           req.Code,
		Notes:          req.Notes,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Reverse handles POST /movements/:id/reverse
func (h *LedgerHandler) Reverse(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	ctx, span := telemetry.StartServiceSpan(c.Request.Context(), "ledger", "reverse")
	defer span.End()

	reversal, err := h.ledger.Reverse(ctx, tctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}
	h.Created(c, reversal)
}

// Balance handles GET /movements/balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.BalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}

	var asOf *time.Time
	if req.AsOf != "" {
		parsed, err := time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			h.BadRequest(c, "Invalid as_of timestamp, expected RFC3339")
			return
		}
		asOf = &parsed
	}

	balance, err := h.ledger.Balance(c.Request.Context(), tctx, warehouseID, productID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// List handles GET /movements. Movements are listed per ledger key, matching
// how balances are derived.
func (h *LedgerHandler) List(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	branchID, err := tctx.RequireBranch()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req dto.BalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}

	key := inventory.LedgerKey{BranchID: branchID, WarehouseID: warehouseID, ProductID: productID}
	movements, err := h.movements.FindByKey(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Get handles GET /movements/:id
func (h *LedgerHandler) Get(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	movement, err := h.movements.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(movement, tctx); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}
