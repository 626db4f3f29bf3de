package handler

import (
	"github.com/erp/branchcore/internal/application/stats"
	"github.com/gin-gonic/gin"
)

// StatsHandler exposes cached aggregate statistics
type StatsHandler struct {
	BaseHandler
	stats *stats.Service
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(service *stats.Service) *StatsHandler {
	return &StatsHandler{stats: service}
}

// Contracts handles GET /stats/contracts
func (h *StatsHandler) Contracts(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	result, err := h.stats.Contracts(c.Request.Context(), tctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Orders handles GET /stats/orders
func (h *StatsHandler) Orders(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	result, err := h.stats.Orders(c.Request.Context(), tctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Movements handles GET /stats/movements
func (h *StatsHandler) Movements(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	result, err := h.stats.Movements(c.Request.Context(), tctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
