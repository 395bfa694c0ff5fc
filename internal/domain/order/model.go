// Package order provides the Order and Detail entities, their persistence
// contracts and the service that places and removes orders.
package order

import (
	"orderdesk/internal/core/entity"
	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/user"
)

// ID identifies an Order.
type ID = id.ID[Order]

// Order belongs to exactly one user.
type Order struct {
	ID     ID      `json:"id"`
	UserID user.ID `json:"userId"`
	entity.Timestamps
}

// New creates an order for u with a generated id.
func New(u user.User) Order {
	return NewWithID(id.New[Order](), u.ID)
}

// NewWithID creates an order with a caller-chosen id.
func NewWithID(orderID ID, userID user.ID) Order {
	if orderID.IsZero() {
		orderID = id.New[Order]()
	}
	return Order{
		ID:         orderID,
		UserID:     userID,
		Timestamps: entity.NewTimestamps(),
	}
}

// GetID implements entity.HasID.
func (o Order) GetID() ID {
	return o.ID
}
