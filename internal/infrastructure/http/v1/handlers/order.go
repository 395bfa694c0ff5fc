package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/http/v1/dto"
	"orderdesk/internal/infrastructure/resolver"
)

// OrderService is the order use-case surface the handler drives.
type OrderService interface {
	Place(ctx context.Context, orderID order.ID, userID user.ID, lines []order.Line) (order.Order, []order.Detail, error)
	Remove(ctx context.Context, orderID order.ID) error
	List(ctx context.Context) ([]order.Order, error)
	ListByUser(ctx context.Context, userID user.ID) ([]order.Order, error)
}

// OrderHandler handles /orders. Orders are read through the request's loaders,
// which also resolve their owners and line items.
type OrderHandler struct {
	*BaseHandler
	service OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create places an order with its line items.
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, _, err := h.service.Place(c.Request.Context(),
		id.From[order.Order](req.ID), id.From[user.User](req.UserID), req.ToLines())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, o.ID.String())
}

// List returns orders, optionally filtered by ?userId=.
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		orders []order.Order
		err    error
	)
	if userID := c.Query("userId"); userID != "" {
		orders, err = h.service.ListByUser(ctx, id.From[user.User](userID))
	} else {
		orders, err = h.service.List(ctx)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	views, err := resolver.ResolveOrders(ctx, orders)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, len(views))
	for i, v := range views {
		items[i] = dto.FromOrderView(v)
	}
	h.OK(c, dto.NewListResponse(items))
}

// Get returns one order with owner and line items.
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	o, err := resolver.OrderByID(ctx, id.From[order.Order](c.Param("id")))
	if err != nil {
		h.Error(c, err)
		return
	}

	view, err := resolver.ResolveOrder(ctx, o)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrderView(view))
}

// Delete removes an order and its line items.
// DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := id.From[order.Order](c.Param("id"))

	if err := h.service.Remove(ctx, orderID); err != nil {
		h.Error(c, err)
		return
	}
	resolver.ForgetOrder(ctx, orderID)

	h.NoContent(c)
}
