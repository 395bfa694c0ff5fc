package dataloader

import (
	"context"

	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
)

// MultiGetter is the batched read a point loader sits on.
type MultiGetter[H any, K comparable, V any] interface {
	GetMulti(ctx context.Context, h H, ids []K) ([]V, error)
}

// OrderSource serves the order point loader and the per-user order lists.
type OrderSource[H any] interface {
	MultiGetter[H, order.ID, order.Order]
	FindByUsers(ctx context.Context, h H, userIDs []user.ID) ([]order.Order, error)
}

// DetailSource serves both detail loaders.
type DetailSource[H any] interface {
	MultiGetter[H, order.DetailID, order.Detail]
	FindByOrders(ctx context.Context, h H, orderIDs []order.ID) ([]order.Detail, error)
}

// Sources are the repositories the per-request loaders read through.
type Sources[H any] struct {
	Users   MultiGetter[H, user.ID, user.User]
	Orders  OrderSource[H]
	Details DetailSource[H]
}

// Loaders is the loader set of one request.
type Loaders struct {
	Users        *Loader[user.ID, user.User]
	Orders       *Loader[order.ID, order.Order]
	UserOrders   *Loader[user.ID, []order.Order]
	Details      *Loader[order.DetailID, order.Detail]
	OrderDetails *Loader[order.ID, []order.Detail]
}

// NewLoaders builds a fresh loader set reading through h.
// h should be a pooled handle: loaders outlive no transaction.
func NewLoaders[H any](h H, src Sources[H], opts ...Option) *Loaders {
	named := func(name string) []Option {
		return append([]Option{WithName(name)}, opts...)
	}

	return &Loaders{
		Users: New(
			func(ctx context.Context, ids []user.ID) ([]user.User, error) {
				return src.Users.GetMulti(ctx, h, ids)
			},
			user.User.GetID,
			named("user")...,
		),
		Orders: New(
			func(ctx context.Context, ids []order.ID) ([]order.Order, error) {
				return src.Orders.GetMulti(ctx, h, ids)
			},
			order.Order.GetID,
			named("order")...,
		),
		UserOrders: NewGrouped(
			func(ctx context.Context, ids []user.ID) ([]order.Order, error) {
				return src.Orders.FindByUsers(ctx, h, ids)
			},
			func(o order.Order) user.ID { return o.UserID },
			named("order")...,
		),
		Details: New(
			func(ctx context.Context, ids []order.DetailID) ([]order.Detail, error) {
				return src.Details.GetMulti(ctx, h, ids)
			},
			order.Detail.GetID,
			named("order_detail")...,
		),
		OrderDetails: NewGrouped(
			func(ctx context.Context, ids []order.ID) ([]order.Detail, error) {
				return src.Details.FindByOrders(ctx, h, ids)
			},
			func(d order.Detail) order.ID { return d.OrderID },
			named("order_detail")...,
		),
	}
}

// FromContext returns the request's loader set, or nil outside a request.
func FromContext(ctx context.Context) *Loaders {
	return For[*Loaders](ctx)
}
