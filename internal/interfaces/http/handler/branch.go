package handler

import (
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BranchHandler exposes branch administration. Mutations require super-admin;
// reads are open so scoped principals can resolve their own branch.
type BranchHandler struct {
	BaseHandler
	branches tenant.BranchRepository
}

// NewBranchHandler creates a new BranchHandler
func NewBranchHandler(branches tenant.BranchRepository) *BranchHandler {
	return &BranchHandler{branches: branches}
}

func (h *BranchHandler) requireSuperAdmin(c *gin.Context) bool {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return false
	}
	if !tctx.IsSuperAdmin() {
		h.HandleError(c, shared.ErrForbidden)
		return false
	}
	return true
}

// Create handles POST /branches
func (h *BranchHandler) Create(c *gin.Context) {
	if !h.requireSuperAdmin(c) {
		return
	}

	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branch, err := tenant.NewBranch(req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	branch.Address = req.Address

	if err := h.branches.Save(c.Request.Context(), branch); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, branch)
}

// Get handles GET /branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}
	branch, err := h.branches.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// List handles GET /branches
func (h *BranchHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := toFilter(req)

	branches, total, err := h.branches.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, branches, total, filter.Page, filter.PageSize)
}

// Update handles PUT /branches/:id
func (h *BranchHandler) Update(c *gin.Context) {
	if !h.requireSuperAdmin(c) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req dto.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branch, err := h.branches.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Name != "" {
		if err := branch.Rename(req.Name); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			branch.Activate()
		} else {
			branch.Deactivate()
		}
	}

	if err := h.branches.Save(c.Request.Context(), branch); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// Delete handles DELETE /branches/:id
func (h *BranchHandler) Delete(c *gin.Context) {
	if !h.requireSuperAdmin(c) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}
	if err := h.branches.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
