package entity_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/storage/postgres"
)

const orderTable = "orders"

type orderRow struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`
	AuditCols
}

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseRepo[order.Order, orderRow]
}

var _ order.Repository[postgres.Handle] = (*OrderRepo)(nil)

// NewOrderRepo creates a new order repository.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		BaseRepo: NewBaseRepo(Table[order.Order, orderRow]{
			Name:    orderTable,
			Entity:  "order",
			ToRow:   orderToRow,
			FromRow: orderFromRow,
		}),
	}
}

// FindByUser returns the user's orders, newest first.
func (r *OrderRepo) FindByUser(ctx context.Context, h postgres.Handle, userID user.ID) ([]order.Order, error) {
	return r.FindBy(ctx, h, "user_id", userID.String())
}

// FindByUsers returns the orders of every listed user in one query, newest first.
func (r *OrderRepo) FindByUsers(ctx context.Context, h postgres.Handle, userIDs []user.ID) ([]order.Order, error) {
	userIDs = id.Unique(userIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"user_id": id.Strings(userIDs)}).
		OrderBy(colCreatedAt + " DESC")

	return r.FindMany(ctx, h, q)
}

func orderToRow(o order.Order) orderRow {
	return orderRow{
		ID:        o.ID.String(),
		UserID:    o.UserID.String(),
		AuditCols: auditCols(o.Timestamps),
	}
}

func orderFromRow(row orderRow) (order.Order, error) {
	if row.ID == "" || row.UserID == "" {
		return order.Order{}, fmt.Errorf("order %q has an empty identifier", row.ID)
	}
	return order.Order{
		ID:         id.From[order.Order](row.ID),
		UserID:     id.From[user.User](row.UserID),
		Timestamps: row.timestamps(),
	}, nil
}
