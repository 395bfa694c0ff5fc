package entity_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/order"
	"orderdesk/internal/infrastructure/storage/postgres"
)

const orderDetailTable = "order_details"

type orderDetailRow struct {
	ID          string `db:"id"`
	OrderID     string `db:"order_id"`
	ProductName string `db:"product_name"`
	Quantity    int32  `db:"quantity"`
	AuditCols
}

// OrderDetailRepo implements order.DetailRepository.
type OrderDetailRepo struct {
	*BaseRepo[order.Detail, orderDetailRow]
}

var _ order.DetailRepository[postgres.Handle] = (*OrderDetailRepo)(nil)

// NewOrderDetailRepo creates a new order detail repository.
func NewOrderDetailRepo() *OrderDetailRepo {
	return &OrderDetailRepo{
		BaseRepo: NewBaseRepo(Table[order.Detail, orderDetailRow]{
			Name:    orderDetailTable,
			Entity:  "order_detail",
			ToRow:   orderDetailToRow,
			FromRow: orderDetailFromRow,
			Check: func(d order.Detail) error {
				return order.CheckQuantity(d.Quantity)
			},
		}),
	}
}

// FindByOrder returns the order's line items, newest first.
func (r *OrderDetailRepo) FindByOrder(ctx context.Context, h postgres.Handle, orderID order.ID) ([]order.Detail, error) {
	return r.FindBy(ctx, h, "order_id", orderID.String())
}

// FindByOrders returns the line items of every listed order in one query.
func (r *OrderDetailRepo) FindByOrders(ctx context.Context, h postgres.Handle, orderIDs []order.ID) ([]order.Detail, error) {
	orderIDs = id.Unique(orderIDs)
	if len(orderIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"order_id": id.Strings(orderIDs)}).
		OrderBy(colCreatedAt + " DESC")

	return r.FindMany(ctx, h, q)
}

// DeleteByOrder removes every line item of the order.
func (r *OrderDetailRepo) DeleteByOrder(ctx context.Context, h postgres.Handle, orderID order.ID) error {
	return r.DeleteBy(ctx, h, "order_id", orderID.String())
}

func orderDetailToRow(d order.Detail) orderDetailRow {
	return orderDetailRow{
		ID:          d.ID.String(),
		OrderID:     d.OrderID.String(),
		ProductName: d.ProductName.String(),
		Quantity:    int32(d.Quantity),
		AuditCols:   auditCols(d.Timestamps),
	}
}

func orderDetailFromRow(row orderDetailRow) (order.Detail, error) {
	name, err := order.NewProductName(row.ProductName)
	if err != nil {
		return order.Detail{}, err
	}
	if row.Quantity < 0 {
		return order.Detail{}, fmt.Errorf("quantity %d out of range", row.Quantity)
	}
	return order.Detail{
		ID:          id.From[order.Detail](row.ID),
		OrderID:     id.From[order.Order](row.OrderID),
		ProductName: name,
		Quantity:    uint32(row.Quantity),
		Timestamps:  row.timestamps(),
	}, nil
}
