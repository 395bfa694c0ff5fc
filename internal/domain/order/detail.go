package order

import (
	"math"
	"unicode/utf8"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/core/entity"
	"orderdesk/internal/core/id"
)

// DetailID identifies a Detail.
type DetailID = id.ID[Detail]

// ProductName bounds
const (
	ProductNameMinLen = 1
	ProductNameMaxLen = 255
)

// MaxQuantity is the largest quantity the INTEGER column holds.
const MaxQuantity = math.MaxInt32

// CheckQuantity rejects quantities the store cannot hold.
func CheckQuantity(q uint32) error {
	if q > MaxQuantity {
		return apperror.NewValidation("quantity is out of range").
			WithDetail("field", "quantity").
			WithDetail("max", MaxQuantity)
	}
	return nil
}

// ProductName is a line item's product label, 1 to 255 characters.
type ProductName string

// NewProductName validates s.
func NewProductName(s string) (ProductName, error) {
	n := utf8.RuneCountInString(s)
	if n < ProductNameMinLen || n > ProductNameMaxLen {
		return "", apperror.NewValidation("product name must be between 1 and 255 characters").
			WithDetail("field", "productName").
			WithDetail("length", n)
	}
	return ProductName(s), nil
}

func (p ProductName) String() string {
	return string(p)
}

// Detail is one line item of an Order.
type Detail struct {
	ID          DetailID    `json:"id"`
	OrderID     ID          `json:"orderId"`
	ProductName ProductName `json:"productName"`
	Quantity    uint32      `json:"quantity"`
	entity.Timestamps
}

// NewDetail creates a line item for order o with a generated id.
func NewDetail(o Order, product ProductName, quantity uint32) Detail {
	return Detail{
		ID:          id.New[Detail](),
		OrderID:     o.ID,
		ProductName: product,
		Quantity:    quantity,
		Timestamps:  entity.NewTimestamps(),
	}
}

// Update changes product and quantity and refreshes UpdatedAt.
func (d *Detail) Update(product ProductName, quantity uint32) {
	d.ProductName = product
	d.Quantity = quantity
	d.Touch()
}

// GetID implements entity.HasID.
func (d Detail) GetID() DetailID {
	return d.ID
}
