package handler

import (
	"github.com/erp/branchcore/internal/domain/rental"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/telemetry"
	"github.com/erp/branchcore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler exposes rental contract operations
type ContractHandler struct {
	BaseHandler
	contracts rental.ContractRepository
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contracts rental.ContractRepository) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// Create handles POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
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

	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer_id")
		return
	}
	rate, err := parseDecimal(req.MonthlyRate)
	if err != nil {
		h.BadRequest(c, "Invalid monthly_rate")
		return
	}

	contract, err := rental.NewRentalContract(branchID, req.ContractNumber, customerID, req.CustomerName, rate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.contracts.Create(c.Request.Context(), contract); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// Get handles GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contracts.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(contract, tctx); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// List handles GET /contracts
func (h *ContractHandler) List(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := toFilter(req)

	contracts, total, err := h.contracts.FindAll(c.Request.Context(), tctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// Transition handles POST /contracts/:id/transition
func (h *ContractHandler) Transition(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx, span := telemetry.StartServiceSpan(c.Request.Context(), "contract", "transition")
	defer span.End()

	contract, err := h.contracts.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(contract, tctx); err != nil {
		h.HandleError(c, err)
		return
	}

	record, err := contract.TransitionTo(rental.ContractStatus(req.Target), tctx.UserID, req.Note)
	if err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}
	if err := h.contracts.SaveWithTransition(ctx, contract, record); err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// History handles GET /contracts/:id/history
func (h *ContractHandler) History(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contracts.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(contract, tctx); err != nil {
		h.HandleError(c, err)
		return
	}

	records, err := h.contracts.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Transitions handles GET /contracts/:id/transitions, returning the legal
// target statuses from the contract's current status.
func (h *ContractHandler) Transitions(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	contract, err := h.contracts.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(contract, tctx); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"status":  contract.Status,
		"allowed": rental.Machine().AllowedTransitions(contract.Status),
		"final":   contract.IsFinal(),
	})
}
