package handlers

import (
	"github.com/gin-gonic/gin"

	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/infrastructure/http/v1/dto"
	"orderdesk/internal/infrastructure/resolver"
)

// DetailHandler handles /order-details. It reads only through the request's loaders.
type DetailHandler struct {
	*BaseHandler
}

// NewDetailHandler creates a new line item handler.
func NewDetailHandler() *DetailHandler {
	return &DetailHandler{BaseHandler: NewBaseHandler()}
}

// Get returns one line item with the order it belongs to.
// A line item whose order is gone is reported as bad input.
// GET /order-details/:id
func (h *DetailHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := resolver.DetailByID(ctx, id.From[order.Detail](c.Param("id")))
	if err != nil {
		h.Error(c, err)
		return
	}

	view, err := resolver.ResolveDetail(ctx, d)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDetailView(view))
}
