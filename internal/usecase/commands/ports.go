package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/usecase/shared"
)

type ProductRepository interface {
	FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error)
	Reserve(ctx context.Context, db repository.DBTX, id uuid.UUID, quantity int32) (*shared.ProductSnapshot, error)
	Release(ctx context.Context, db repository.DBTX, id uuid.UUID, quantity int32) error
}

type CouponRepository interface {
	FindByCode(ctx context.Context, db repository.DBTX, code string) (*coupon.Coupon, error)
	FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*coupon.Coupon, error)
	Create(ctx context.Context, db repository.DBTX, c *coupon.Coupon) error
	Update(ctx context.Context, db repository.DBTX, c *coupon.Coupon) error
	SetEnabled(ctx context.Context, db repository.DBTX, c *coupon.Coupon) error
	FindAssignment(ctx context.Context, db repository.DBTX, couponID, userID uuid.UUID) (*coupon.Assignment, error)
	CreateAssignments(ctx context.Context, db repository.DBTX, assignments []*coupon.Assignment) error
	IncrementUsage(ctx context.Context, db repository.DBTX, couponID, userID uuid.UUID) (bool, error)
	ExpireBefore(ctx context.Context, db repository.DBTX, cutoff time.Time) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, db repository.DBTX, o *order.Order) error
	FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*order.Order, error)
	FindByPaymentRef(ctx context.Context, db repository.DBTX, ref string) (*order.Order, error)
	SetPaymentRef(ctx context.Context, db repository.DBTX, id uuid.UUID, ref string) error
	MarkPaid(ctx context.Context, db repository.DBTX, ref string, at time.Time) (bool, error)
	MarkDelivered(ctx context.Context, db repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error)
	MarkCanceled(ctx context.Context, db repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error)
	MarkRefunded(ctx context.Context, db repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, db repository.DBTX, userID uuid.UUID) (*cart.Cart, error)
	Save(ctx context.Context, db repository.DBTX, c *cart.Cart) error
	Delete(ctx context.Context, db repository.DBTX, userID uuid.UUID) error
}

// UnitOfWork runs fn inside one database transaction; every repository call
// made through the passed DBTX commits or rolls back together.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, db repository.DBTX) error) error
}

// ChargeRequest carries everything the payment provider needs to open a
// hosted checkout for an already-created order.
type ChargeRequest struct {
	OrderID       uuid.UUID
	UserID        uuid.UUID
	CustomerEmail string
	Items         []order.LineItem
	TotalCents    int64
	DiscountRef   *string
}

// ClientHandle is what the caller needs to complete payment on the provider's
// side: the session id is kept as the order's payment reference.
type ClientHandle struct {
	SessionID string
	URL       string
}

type RefundResult struct {
	RefundID string
	Status   string
}

type PaymentGateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ClientHandle, error)
	CreateDiscountRef(ctx context.Context, c *coupon.Coupon) (string, error)
	Refund(ctx context.Context, orderID uuid.UUID, paymentRef string) (*RefundResult, error)
}

// PaymentNotice is a provider callback reduced to what the order flow needs.
type PaymentNotice struct {
	SessionID string
	Completed bool
}

// WebhookVerifier authenticates a raw provider callback against its
// signature header before any state moves.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signature string) (*PaymentNotice, error)
}

type OrderPlacedEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	UserID        uuid.UUID `json:"userId"`
	TotalCents    int64     `json:"totalCents"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type OrderPaidEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	PaymentRef string    `json:"paymentRef"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher emits order lifecycle events after the owning transaction
// commits; publishing is best effort and never fails the command.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlacedEvent) error
	PublishOrderPaid(ctx context.Context, ev OrderPaidEvent) error
}
