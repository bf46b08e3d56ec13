package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/order"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrProductNotInCart = errors.New("product not found in cart")
	ErrEmptyCart        = errors.New("cart has no products")
)

// Line is one product entry in a cart. lineTotal is kept equal to
// basePrice * quantity and the cart subtotal equal to the sum of line totals.
type Line struct {
	ProductID      uuid.UUID
	Title          string
	Quantity       int32
	BasePriceCents int64
	LineTotalCents int64
}

// Cart is the single live cart of one user. It is created on first
// add-to-cart and deleted once converted to an order or emptied.
type Cart struct {
	id            uuid.UUID
	userID        uuid.UUID
	lines         []Line
	subTotalCents int64
	createdAt     time.Time
	updatedAt     time.Time
}

func NewCart(id, userID uuid.UUID) *Cart {
	return &Cart{id: id, userID: userID}
}

func Reconstruct(id, userID uuid.UUID, lines []Line, subTotalCents int64, createdAt, updatedAt time.Time) *Cart {
	return &Cart{
		id:            id,
		userID:        userID,
		lines:         lines,
		subTotalCents: subTotalCents,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// PutProduct adds the product or, when the line already exists, replaces its
// quantity. The subtotal is recomputed afterwards.
func (c *Cart) PutProduct(productID uuid.UUID, title string, basePriceCents int64, quantity int32) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			c.lines[i].LineTotalCents = basePriceCents * int64(quantity)
			c.recalcSubTotal()
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		ProductID:      productID,
		Title:          title,
		Quantity:       quantity,
		BasePriceCents: basePriceCents,
		LineTotalCents: basePriceCents * int64(quantity),
	})
	c.recalcSubTotal()
	return nil
}

func (c *Cart) RemoveProduct(productID uuid.UUID) error {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.recalcSubTotal()
			return nil
		}
	}
	return ErrProductNotInCart
}

// ToOrderItems expands the cart lines into order line items for conversion.
func (c *Cart) ToOrderItems() ([]order.LineItem, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]order.LineItem, 0, len(c.lines))
	for _, line := range c.lines {
		item, err := order.NewLineItem(line.ProductID, line.Title, line.Quantity, line.BasePriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Cart) recalcSubTotal() {
	var sum int64
	for _, line := range c.lines {
		sum += line.LineTotalCents
	}
	c.subTotalCents = sum
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) ID() uuid.UUID        { return c.id }
func (c *Cart) UserID() uuid.UUID    { return c.userID }
func (c *Cart) Lines() []Line        { return c.lines }
func (c *Cart) SubTotalCents() int64 { return c.subTotalCents }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }
