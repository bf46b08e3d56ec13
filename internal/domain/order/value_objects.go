package order

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidUnitPrice     = errors.New("unit price cannot be negative")
	ErrEmptyLineItems       = errors.New("order must have at least one line item")
	ErrIncompleteAddress    = errors.New("shipping address is incomplete")
	ErrMissingPhoneNumber   = errors.New("at least one phone number is required")
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentStripe PaymentMethod = "Stripe"
	PaymentPaymob PaymentMethod = "Paymob"
)

func NewPaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentStripe, PaymentPaymob:
		return PaymentMethod(s), nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// EntryStatus selects the initial state: pay-on-delivery orders start Placed,
// everything else waits for a payment confirmation.
func (m PaymentMethod) EntryStatus() Status {
	if m == PaymentCash {
		return StatusPlaced
	}
	return StatusPending
}

func (m PaymentMethod) String() string {
	return string(m)
}

// LineItem is the immutable snapshot of one purchased product; title and unit
// price are copied at creation so later catalog edits cannot change an order.
type LineItem struct {
	ProductID      uuid.UUID
	Title          string
	Quantity       int32
	UnitPriceCents int64
}

func NewLineItem(productID uuid.UUID, title string, quantity int32, unitPriceCents int64) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPriceCents < 0 {
		return LineItem{}, ErrInvalidUnitPrice
	}
	return LineItem{
		ProductID:      productID,
		Title:          title,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	}, nil
}

func (li LineItem) TotalCents() int64 {
	return li.UnitPriceCents * int64(li.Quantity)
}

type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

func NewShippingAddress(address, city, postalCode, country string) (ShippingAddress, error) {
	a := ShippingAddress{
		Address:    strings.TrimSpace(address),
		City:       strings.TrimSpace(city),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.TrimSpace(country),
	}
	if a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ShippingAddress{}, ErrIncompleteAddress
	}
	return a, nil
}
