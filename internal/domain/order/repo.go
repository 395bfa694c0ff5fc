package order

import (
	"context"

	"orderdesk/internal/domain/user"
)

// Repository defines the interface for Order persistence.
// H is the data handle: a pooled connection or an open transaction.
type Repository[H any] interface {
	Find(ctx context.Context, h H) ([]Order, error)
	Get(ctx context.Context, h H, id ID) (Order, error)
	GetMulti(ctx context.Context, h H, ids []ID) ([]Order, error)
	Insert(ctx context.Context, h H, o Order) error
	Update(ctx context.Context, h H, o Order) error
	Delete(ctx context.Context, h H, id ID) error

	// FindByUser returns the user's orders, newest first. An unknown user yields an empty slice.
	FindByUser(ctx context.Context, h H, userID user.ID) ([]Order, error)
}

// DetailRepository defines the interface for Detail persistence.
type DetailRepository[H any] interface {
	Find(ctx context.Context, h H) ([]Detail, error)
	Get(ctx context.Context, h H, id DetailID) (Detail, error)
	GetMulti(ctx context.Context, h H, ids []DetailID) ([]Detail, error)
	Insert(ctx context.Context, h H, d Detail) error
	Update(ctx context.Context, h H, d Detail) error
	Delete(ctx context.Context, h H, id DetailID) error

	// InsertMany writes all details in one round-trip.
	InsertMany(ctx context.Context, h H, details []Detail) error

	// FindByOrder returns the order's line items, newest first.
	FindByOrder(ctx context.Context, h H, orderID ID) ([]Detail, error)

	// FindByOrders returns the line items of every listed order.
	FindByOrders(ctx context.Context, h H, orderIDs []ID) ([]Detail, error)

	// DeleteByOrder removes every line item of the order.
	DeleteByOrder(ctx context.Context, h H, orderID ID) error
}

// UserReader is the slice of user persistence the order service needs.
type UserReader[H any] interface {
	Get(ctx context.Context, h H, id user.ID) (user.User, error)
}
