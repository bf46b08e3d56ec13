package order

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/coupon"
)

var ErrCancelWindowExpired = errors.New("cancellation window has expired")

// Order is an immutable snapshot of a purchase: line items, addresses and
// prices never change after creation. Only status and payment metadata move,
// and those moves go through conditional updates at the storage layer.
type Order struct {
	id            uuid.UUID
	userID        uuid.UUID
	items         []LineItem
	address       ShippingAddress
	phoneNumbers  []string
	shippingCents int64
	totalCents    int64
	couponID      *uuid.UUID
	paymentMethod PaymentMethod
	status        Status

	paidAt      *time.Time
	deliveredAt *time.Time
	deliveredBy *uuid.UUID
	canceledAt  *time.Time
	canceledBy  *uuid.UUID
	refundedAt  *time.Time
	refundedBy  *uuid.UUID

	paymentRef *string

	createdAt time.Time
	updatedAt time.Time
}

// NewOrder prices the line items (applying the coupon discount when present)
// and selects the entry status from the payment method.
func NewOrder(
	id uuid.UUID,
	userID uuid.UUID,
	items []LineItem,
	address ShippingAddress,
	phoneNumbers []string,
	paymentMethod PaymentMethod,
	coup *coupon.Coupon,
) (*Order, error) {
	if len(phoneNumbers) == 0 {
		return nil, ErrMissingPhoneNumber
	}

	var discount *coupon.Discount
	var couponID *uuid.UUID
	if coup != nil {
		d := coup.Discount()
		discount = &d
		cid := coup.ID()
		couponID = &cid
	}

	quote, err := Price(items, discount)
	if err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		userID:        userID,
		items:         items,
		address:       address,
		phoneNumbers:  phoneNumbers,
		shippingCents: quote.ShippingCents,
		totalCents:    quote.TotalCents,
		couponID:      couponID,
		paymentMethod: paymentMethod,
		status:        paymentMethod.EntryStatus(),
	}, nil
}

func Reconstruct(
	id, userID uuid.UUID,
	items []LineItem,
	address ShippingAddress,
	phoneNumbers []string,
	shippingCents, totalCents int64,
	couponID *uuid.UUID,
	paymentMethod PaymentMethod,
	status Status,
	paidAt *time.Time,
	deliveredAt *time.Time, deliveredBy *uuid.UUID,
	canceledAt *time.Time, canceledBy *uuid.UUID,
	refundedAt *time.Time, refundedBy *uuid.UUID,
	paymentRef *string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:            id,
		userID:        userID,
		items:         items,
		address:       address,
		phoneNumbers:  phoneNumbers,
		shippingCents: shippingCents,
		totalCents:    totalCents,
		couponID:      couponID,
		paymentMethod: paymentMethod,
		status:        status,
		paidAt:        paidAt,
		deliveredAt:   deliveredAt,
		deliveredBy:   deliveredBy,
		canceledAt:    canceledAt,
		canceledBy:    canceledBy,
		refundedAt:    refundedAt,
		refundedBy:    refundedBy,
		paymentRef:    paymentRef,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// CancelableAt checks the cancel guards without mutating: the order must be
// in an entry state and still inside the window measured from creation.
func (o *Order) CancelableAt(now time.Time, window time.Duration) error {
	if !o.status.CanTransitionTo(StatusCanceled) {
		return ErrInvalidTransition
	}
	if now.Sub(o.createdAt) > window {
		return ErrCancelWindowExpired
	}
	return nil
}

func (o *Order) IsPaid() bool {
	return o.status == StatusPaid || o.refundedAt != nil
}

func (o *Order) ID() uuid.UUID                 { return o.id }
func (o *Order) UserID() uuid.UUID             { return o.userID }
func (o *Order) Items() []LineItem             { return o.items }
func (o *Order) Address() ShippingAddress      { return o.address }
func (o *Order) PhoneNumbers() []string        { return o.phoneNumbers }
func (o *Order) ShippingCents() int64          { return o.shippingCents }
func (o *Order) TotalCents() int64             { return o.totalCents }
func (o *Order) CouponID() *uuid.UUID          { return o.couponID }
func (o *Order) PaymentMethod() PaymentMethod  { return o.paymentMethod }
func (o *Order) Status() Status                { return o.status }
func (o *Order) PaidAt() *time.Time            { return o.paidAt }
func (o *Order) DeliveredAt() *time.Time       { return o.deliveredAt }
func (o *Order) DeliveredBy() *uuid.UUID       { return o.deliveredBy }
func (o *Order) CanceledAt() *time.Time        { return o.canceledAt }
func (o *Order) CanceledBy() *uuid.UUID        { return o.canceledBy }
func (o *Order) RefundedAt() *time.Time        { return o.refundedAt }
func (o *Order) RefundedBy() *uuid.UUID        { return o.refundedBy }
func (o *Order) PaymentRef() *string           { return o.paymentRef }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }
