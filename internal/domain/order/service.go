package order

import (
	"context"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/tx"
	"orderdesk/internal/domain/user"
)

// Line is one requested line item before validation.
type Line struct {
	ProductName string
	Quantity    uint32
}

// Service places, reads and removes orders.
type Service[H any] struct {
	orders  Repository[H]
	details DetailRepository[H]
	users   UserReader[H]
	txm     tx.Manager[H]
}

// NewService creates a new order service.
func NewService[H any](orders Repository[H], details DetailRepository[H], users UserReader[H], txm tx.Manager[H]) *Service[H] {
	return &Service[H]{orders: orders, details: details, users: users, txm: txm}
}

// Place writes an order and all its line items atomically.
// Either everything is visible afterwards or nothing is.
func (s *Service[H]) Place(ctx context.Context, orderID ID, userID user.ID, lines []Line) (Order, []Detail, error) {
	if len(lines) == 0 {
		return Order{}, nil, apperror.NewValidation("order must have at least one line").
			WithDetail("field", "details")
	}
	names := make([]ProductName, len(lines))
	for i, l := range lines {
		n, err := NewProductName(l.ProductName)
		if err != nil {
			return Order{}, nil, err
		}
		if err := CheckQuantity(l.Quantity); err != nil {
			return Order{}, nil, err
		}
		names[i] = n
	}

	var (
		placed  Order
		details []Detail
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context, h H) error {
		u, err := s.users.Get(ctx, h, userID)
		if err != nil {
			return err
		}

		o := NewWithID(orderID, u.ID)
		if err := s.orders.Insert(ctx, h, o); err != nil {
			return err
		}

		ds := make([]Detail, len(lines))
		for i, l := range lines {
			ds[i] = NewDetail(o, names[i], l.Quantity)
		}
		if err := s.details.InsertMany(ctx, h, ds); err != nil {
			return err
		}

		placed, details = o, ds
		return nil
	})
	if err != nil {
		return Order{}, nil, err
	}
	return placed, details, nil
}

// Remove deletes an order together with its line items in one transaction.
func (s *Service[H]) Remove(ctx context.Context, orderID ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context, h H) error {
		if _, err := s.orders.Get(ctx, h, orderID); err != nil {
			return err
		}
		if err := s.details.DeleteByOrder(ctx, h, orderID); err != nil {
			return err
		}
		return s.orders.Delete(ctx, h, orderID)
	})
}

// List returns all orders, newest first.
func (s *Service[H]) List(ctx context.Context) ([]Order, error) {
	return s.orders.Find(ctx, s.txm.Handle())
}

// ListByUser returns the user's orders, newest first.
func (s *Service[H]) ListByUser(ctx context.Context, userID user.ID) ([]Order, error) {
	return s.orders.FindByUser(ctx, s.txm.Handle(), userID)
}
