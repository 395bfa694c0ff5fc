// Package resolver exposes the relationship fields of users, orders and line items.
// Point reads go through the request's loaders so sibling fields resolved
// concurrently share one fetch per entity kind.
package resolver

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/dataloader"
)

var errNoLoaders = errors.New("resolver: no loaders in context")

func loaders(ctx context.Context) (*dataloader.Loaders, error) {
	l := dataloader.FromContext(ctx)
	if l == nil {
		return nil, apperror.NewInternal(errNoLoaders)
	}
	return l, nil
}

// UserByID loads one user through the request's loaders.
func UserByID(ctx context.Context, userID user.ID) (user.User, error) {
	l, err := loaders(ctx)
	if err != nil {
		return user.User{}, err
	}
	return l.Users.Load(ctx, userID)
}

// OrderByID loads one order through the request's loaders.
func OrderByID(ctx context.Context, orderID order.ID) (order.Order, error) {
	l, err := loaders(ctx)
	if err != nil {
		return order.Order{}, err
	}
	return l.Orders.Load(ctx, orderID)
}

// DetailByID loads one line item through the request's loaders.
func DetailByID(ctx context.Context, detailID order.DetailID) (Detail, error) {
	l, err := loaders(ctx)
	if err != nil {
		return Detail{}, err
	}
	d, err := l.Details.Load(ctx, detailID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{d}, nil
}

// ForgetUser drops a removed user from the request's loaders.
func ForgetUser(ctx context.Context, userID user.ID) {
	if l := dataloader.FromContext(ctx); l != nil {
		l.Users.Clear(userID)
		l.UserOrders.Clear(userID)
	}
}

// ForgetOrder drops a removed order from the request's loaders.
func ForgetOrder(ctx context.Context, orderID order.ID) {
	if l := dataloader.FromContext(ctx); l != nil {
		l.Orders.Clear(orderID)
		l.OrderDetails.Clear(orderID)
	}
}

// User resolves the relationships of one user.
type User struct {
	user.User
}

// Orders returns the user's orders, newest first.
func (u User) Orders(ctx context.Context) ([]order.Order, error) {
	l, err := loaders(ctx)
	if err != nil {
		return nil, err
	}
	return l.UserOrders.Load(ctx, u.ID)
}

// Order resolves the relationships of one order.
type Order struct {
	order.Order
}

// User returns the order's owner.
func (o Order) User(ctx context.Context) (user.User, error) {
	l, err := loaders(ctx)
	if err != nil {
		return user.User{}, err
	}
	return l.Users.Load(ctx, o.UserID)
}

// Details returns the order's line items.
func (o Order) Details(ctx context.Context) ([]order.Detail, error) {
	l, err := loaders(ctx)
	if err != nil {
		return nil, err
	}
	return l.OrderDetails.Load(ctx, o.ID)
}

// Detail resolves the relationships of one line item.
type Detail struct {
	order.Detail
}

// Order returns the order the line item belongs to.
// A dangling reference is reported as bad input rather than NotFound.
func (d Detail) Order(ctx context.Context) (order.Order, error) {
	l, err := loaders(ctx)
	if err != nil {
		return order.Order{}, err
	}
	o, err := l.Orders.Load(ctx, d.OrderID)
	if apperror.IsNotFound(err) {
		return order.Order{}, apperror.NewInvalidInput("order of detail does not exist").
			WithDetail("detailId", d.ID.String()).
			WithDetail("orderId", d.OrderID.String()).
			WithCause(err)
	}
	return o, err
}

// UserView is a user with their orders resolved.
type UserView struct {
	User   user.User
	Orders []order.Order
}

// ResolveUsers resolves the orders of every user concurrently, so all of them
// come from one fetch.
func ResolveUsers(ctx context.Context, users []user.User) ([]UserView, error) {
	l, err := loaders(ctx)
	if err != nil {
		return nil, err
	}
	dataloader.PrimeMany(l.Users, users, user.User.GetID)

	views := make([]UserView, len(users))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range users {
		r := User{u}
		views[i].User = u

		g.Go(func() error {
			orders, err := r.Orders(gctx)
			if err != nil {
				return err
			}
			views[i].Orders = orders
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// ResolveUser resolves a single user.
func ResolveUser(ctx context.Context, u user.User) (UserView, error) {
	views, err := ResolveUsers(ctx, []user.User{u})
	if err != nil {
		return UserView{}, err
	}
	return views[0], nil
}

// DetailView is a line item with its order resolved.
type DetailView struct {
	Detail order.Detail
	Order  order.Order
}

// ResolveDetail resolves the order of d.
func ResolveDetail(ctx context.Context, d Detail) (DetailView, error) {
	o, err := d.Order(ctx)
	if err != nil {
		return DetailView{}, err
	}
	return DetailView{Detail: d.Detail, Order: o}, nil
}

// OrderView is an order with its relationships resolved.
type OrderView struct {
	Order   order.Order
	User    user.User
	Details []order.Detail
}

// ResolveOrders resolves owner and line items of every order concurrently.
// All lookups started here land in the same loader windows.
func ResolveOrders(ctx context.Context, orders []order.Order) ([]OrderView, error) {
	l, err := loaders(ctx)
	if err != nil {
		return nil, err
	}
	dataloader.PrimeMany(l.Orders, orders, order.Order.GetID)

	views := make([]OrderView, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	for i, o := range orders {
		r := Order{o}
		views[i].Order = o

		g.Go(func() error {
			u, err := r.User(gctx)
			if err != nil {
				return err
			}
			views[i].User = u
			return nil
		})
		g.Go(func() error {
			ds, err := r.Details(gctx)
			if err != nil {
				return err
			}
			views[i].Details = ds
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// ResolveOrder resolves a single order.
func ResolveOrder(ctx context.Context, o order.Order) (OrderView, error) {
	views, err := ResolveOrders(ctx, []order.Order{o})
	if err != nil {
		return OrderView{}, err
	}
	return views[0], nil
}
