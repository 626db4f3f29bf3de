package handler

import (
	"github.com/erp/branchcore/internal/application/fulfillment"
	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/sales"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/telemetry"
	"github.com/erp/branchcore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler exposes sales order operations
type OrderHandler struct {
	BaseHandler
	orders      sales.OrderRepository
	fulfillment *fulfillment.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders sales.OrderRepository, fulfillmentService *fulfillment.Service) *OrderHandler {
	return &OrderHandler{orders: orders, fulfillment: fulfillmentService}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
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

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer_id")
		return
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id")
		return
	}

	order, err := sales.NewSalesOrder(branchID, req.OrderNumber, customerID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product_id")
			return
		}
		quantity, err := parseDecimal(item.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid quantity")
			return
		}
		unitPrice, err := parseDecimal(item.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit_price")
			return
		}
		if err := order.AddItem(productID, item.ProductName, quantity, unitPrice); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if err := h.orders.Create(c.Request.Context(), order); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := tenant.AssertAccessible(order, tctx); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
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

	orders, total, err := h.orders.FindAll(c.Request.Context(), tctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// AddItem handles POST /orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	order, _, ok := h.loadAccessible(c)
	if !ok {
		return
	}

	var req dto.AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
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
	unitPrice, err := parseDecimal(req.UnitPrice)
	if err != nil {
		h.BadRequest(c, "Invalid unit_price")
		return
	}

	if err := order.AddItem(productID, req.ProductName, quantity, unitPrice); err != nil {
		h.HandleError(c, err)
		return
	}
	order.IncrementVersion()
	if err := h.orders.Save(c.Request.Context(), order); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ApplyDiscount handles POST /orders/:id/discount
func (h *OrderHandler) ApplyDiscount(c *gin.Context) {
	order, _, ok := h.loadAccessible(c)
	if !ok {
		return
	}

	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	value, err := parseDecimal(req.Value)
	if err != nil {
		h.BadRequest(c, "Invalid discount value")
		return
	}

	switch req.Kind {
	case "percent":
		err = order.ApplyPercentDiscount(value)
	case "amount":
		err = order.ApplyAmountDiscount(value)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	order.IncrementVersion()
	if err := h.orders.Save(c.Request.Context(), order); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Transition handles POST /orders/:id/transition
func (h *OrderHandler) Transition(c *gin.Context) {
	order, tctx, ok := h.loadAccessible(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx, span := telemetry.StartServiceSpan(c.Request.Context(), "order", "transition")
	defer span.End()

	var (
		record *lifecycle.TransitionRecord
		err    error
	)
	switch sales.OrderStatus(req.Target) {
	case sales.OrderStatusConfirmed:
		record, err = order.Confirm(tctx.UserID)
	case sales.OrderStatusFulfilled:
		// Fulfillment persists the order and the outbound ledger movements itself
		if _, err := h.fulfillment.Fulfill(ctx, tctx, order); err != nil {
			telemetry.RecordError(span, err)
			h.HandleError(c, err)
			return
		}
		h.Success(c, order)
		return
	case sales.OrderStatusCancelled:
		record, err = order.Cancel(tctx.UserID, req.Note)
	default:
		h.BadRequest(c, "Unknown order status: "+req.Target)
		return
	}
	if err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}

	if err := h.orders.SaveWithTransition(ctx, order, record); err != nil {
		telemetry.RecordError(span, err)
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// History handles GET /orders/:id/history
func (h *OrderHandler) History(c *gin.Context) {
	order, _, ok := h.loadAccessible(c)
	if !ok {
		return
	}
	records, err := h.orders.History(c.Request.Context(), order.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// loadAccessible binds the :id parameter, loads the order and checks access
func (h *OrderHandler) loadAccessible(c *gin.Context) (*sales.SalesOrder, tenant.Context, bool) {
	tctx, ok := principal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return nil, tenant.Context{}, false
	}
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return nil, tenant.Context{}, false
	}
	order, err := h.orders.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, tenant.Context{}, false
	}
	if err := tenant.AssertAccessible(order, tctx); err != nil {
		h.HandleError(c, err)
		return nil, tenant.Context{}, false
	}
	return order, tctx, true
}
