// Package handler contains the gin HTTP handlers for the API surface.
package handler

import (
	"errors"
	"net/http"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/logger"
	"github.com/erp/branchcore/internal/interfaces/http/dto"
	"github.com/erp/branchcore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// principal extracts the authenticated principal's branch context
func principal(c *gin.Context) (tenant.Context, bool) {
	return middleware.GetTenantContext(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID("BAD_REQUEST", message, getRequestID(c)))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID("UNAUTHORIZED", message, getRequestID(c)))
}

// HandleError translates business errors into HTTP responses. Business rule
// rejections respond with their taxonomy status and are not reported;
// configuration errors and unknown failures are logged as defects.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)
	ctx := c.Request.Context()

	var bizErr *shared.BusinessError
	if errors.As(err, &bizErr) {
		if bizErr.ShouldReport() {
			logger.L(ctx).Error("configuration error",
				zap.String("code", bizErr.Code),
				zap.Error(bizErr),
			)
		} else {
			logger.L(ctx).Debug("business rule rejection",
				zap.String("code", bizErr.Code),
				zap.String("message", bizErr.Message),
			)
		}
		c.JSON(bizErr.HTTPStatus(), dto.NewErrorResponseWithRequestID(bizErr.Code, bizErr.Message, requestID))
		return
	}

	logger.L(ctx).Error("unexpected error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		"INTERNAL_ERROR",
		"An unexpected error occurred",
		requestID,
	))
}

// parseID binds and parses the :id path parameter
func parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseDecimal parses a decimal request field
func parseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

// toFilter converts a bound list request into a repository filter
func toFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}
