package dto

import (
	"orderdesk/internal/domain/order"
	"orderdesk/internal/infrastructure/resolver"
)

// OrderLineRequest is one line item of a new order.
type OrderLineRequest struct {
	ProductName string `json:"productName" binding:"required"`
	Quantity    uint32 `json:"quantity"`
}

// CreateOrderRequest for placing an order.
type CreateOrderRequest struct {
	ID     string             `json:"id"`
	UserID string             `json:"userId" binding:"required"`
	Lines  []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToLines converts request lines to service input.
func (r CreateOrderRequest) ToLines() []order.Line {
	lines := make([]order.Line, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = order.Line{ProductName: l.ProductName, Quantity: l.Quantity}
	}
	return lines
}

// OrderDetailResponse is the public form of a line item.
type OrderDetailResponse struct {
	BaseResponse
	OrderID     string `json:"orderId"`
	ProductName string `json:"productName"`
	Quantity    uint32 `json:"quantity"`
}

// FromOrderDetail creates OrderDetailResponse from order.Detail.
func FromOrderDetail(d order.Detail) OrderDetailResponse {
	return OrderDetailResponse{
		BaseResponse: fromBase(d.ID.String(), d.Timestamps),
		OrderID:      d.OrderID.String(),
		ProductName:  d.ProductName.String(),
		Quantity:     d.Quantity,
	}
}

// OrderSummaryResponse is an order without its relationships.
type OrderSummaryResponse struct {
	BaseResponse
	UserID string `json:"userId"`
}

// FromOrder creates OrderSummaryResponse from order.Order.
func FromOrder(o order.Order) OrderSummaryResponse {
	return OrderSummaryResponse{
		BaseResponse: fromBase(o.ID.String(), o.Timestamps),
		UserID:       o.UserID.String(),
	}
}

// OrderDetailWithOrderResponse is a line item with the order it belongs to.
type OrderDetailWithOrderResponse struct {
	OrderDetailResponse
	Order OrderSummaryResponse `json:"order"`
}

// FromDetailView creates OrderDetailWithOrderResponse from a resolved line item.
func FromDetailView(v resolver.DetailView) OrderDetailWithOrderResponse {
	return OrderDetailWithOrderResponse{
		OrderDetailResponse: FromOrderDetail(v.Detail),
		Order:               FromOrder(v.Order),
	}
}

// OrderResponse is an order with its owner and line items.
type OrderResponse struct {
	BaseResponse
	User    UserResponse          `json:"user"`
	Details []OrderDetailResponse `json:"details"`
}

// FromOrderView creates OrderResponse from a resolved order.
func FromOrderView(v resolver.OrderView) OrderResponse {
	details := make([]OrderDetailResponse, len(v.Details))
	for i, d := range v.Details {
		details[i] = FromOrderDetail(d)
	}
	return OrderResponse{
		BaseResponse: fromBase(v.Order.ID.String(), v.Order.Timestamps),
		User:         FromUser(v.User),
		Details:      details,
	}
}
