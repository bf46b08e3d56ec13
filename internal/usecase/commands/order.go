package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/domain/order"
	reqdto "storefront-core/internal/handler/dto/request"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/receipt"
	"storefront-core/internal/usecase/queries"
)

var (
	ErrOrderNotFound           = errs.New("order not found")
	ErrProductUnavailable      = errs.New("product unavailable")
	ErrCouponNotFound          = errs.New("coupon not found")
	ErrNotOrderOwner           = errs.New("order belongs to another user")
	ErrPaymentNotRequired      = errs.New("order does not require online payment")
	ErrPaymentNotConfirmable   = errs.New("order is not awaiting payment")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type PlaceOrderResult struct {
	// Order is nil when the committed order could not be read back; the
	// receipt still identifies it.
	Order *queries.OrderView
	// Payment is nil for cash orders and on degraded success.
	Payment         *ClientHandle
	PaymentDegraded bool
	Receipt         receipt.Receipt
}

type OrderCommands interface {
	PlaceOrder(ctx context.Context, req reqdto.PlaceOrderRequest, userID uuid.UUID, email string) (*PlaceOrderResult, error)
	PlaceOrderFromCart(ctx context.Context, req reqdto.PlaceOrderFromCartRequest, userID uuid.UUID, email string) (*PlaceOrderResult, error)
	Pay(ctx context.Context, orderID, userID uuid.UUID, email string) (*ClientHandle, error)
	ConfirmPayment(ctx context.Context, payload []byte, signature string) error
	Cancel(ctx context.Context, orderID, actorID uuid.UUID, isAdmin bool) error
	Deliver(ctx context.Context, orderID, adminID uuid.UUID) error
	Refund(ctx context.Context, orderID, adminID uuid.UUID) error
}

type orderUseCaseImpl struct {
	orderRepo    OrderRepository
	productRepo  ProductRepository
	couponRepo   CouponRepository
	cartRepo     CartRepository
	orderQueries queries.OrderQueries
	gateway      PaymentGateway
	verifier     WebhookVerifier
	publisher    EventPublisher
	uow          UnitOfWork
	db           repository.DBTX
	clock        clock.Clock
	cfg          config.OrderConfig
}

func NewOrderUseCase(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	couponRepo CouponRepository,
	cartRepo CartRepository,
	orderQueries queries.OrderQueries,
	gateway PaymentGateway,
	verifier WebhookVerifier,
	publisher EventPublisher,
	uow UnitOfWork,
	db repository.DBTX,
	clock clock.Clock,
	cfg config.OrderConfig,
) OrderCommands {
	return &orderUseCaseImpl{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		cartRepo:     cartRepo,
		orderQueries: orderQueries,
		gateway:      gateway,
		verifier:     verifier,
		publisher:    publisher,
		uow:          uow,
		db:           db,
		clock:        clock,
		cfg:          cfg,
	}
}

func (u *orderUseCaseImpl) PlaceOrder(
	ctx context.Context,
	req reqdto.PlaceOrderRequest,
	userID uuid.UUID,
	email string,
) (*PlaceOrderResult, error) {
	paymentMethod, err := order.NewPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	address, err := req.ShippingAddress.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	orderID := uuid.New()
	err = u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		coup, err := u.resolveCoupon(ctx, db, req.GetCouponCode(), userID)
		if err != nil {
			return err
		}

		// Reserving inside the transaction makes the multi-line reservation
		// all-or-nothing: a failure on line k rolls back every earlier
		// decrement with the rest of the order.
		items, err := u.reserveItems(ctx, db, req.Items)
		if err != nil {
			return err
		}

		newOrder, err := order.NewOrder(orderID, userID, items, address, req.PhoneNumbers, paymentMethod, coup)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if err := u.orderRepo.Create(ctx, db, newOrder); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return u.consumeCouponUsage(ctx, db, coup, userID)
	})
	if err != nil {
		return nil, err
	}

	return u.finishPlacement(ctx, orderID, userID, email, paymentMethod)
}

func (u *orderUseCaseImpl) PlaceOrderFromCart(
	ctx context.Context,
	req reqdto.PlaceOrderFromCartRequest,
	userID uuid.UUID,
	email string,
) (*PlaceOrderResult, error) {
	paymentMethod, err := order.NewPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}
	address, err := req.ShippingAddress.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	orderID := uuid.New()
	err = u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		userCart, err := u.cartRepo.FindByUser(ctx, db, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCartNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		items, err := userCart.ToOrderItems()
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		coup, err := u.resolveCoupon(ctx, db, req.GetCouponCode(), userID)
		if err != nil {
			return err
		}

		// Cart lines carry the frozen title and price; reservation only
		// guards stock here.
		for _, item := range items {
			if _, err := u.productRepo.Reserve(ctx, db, item.ProductID, item.Quantity); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return ErrProductUnavailable
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		newOrder, err := order.NewOrder(orderID, userID, items, address, req.PhoneNumbers, paymentMethod, coup)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if err := u.orderRepo.Create(ctx, db, newOrder); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := u.consumeCouponUsage(ctx, db, coup, userID); err != nil {
			return err
		}

		// Same unit of work: the cart survives if anything above fails.
		if err := u.cartRepo.Delete(ctx, db, userID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.finishPlacement(ctx, orderID, userID, email, paymentMethod)
}

// Pay re-opens a checkout session for a pending card order, covering both
// the degraded-success path and an abandoned provider session.
func (u *orderUseCaseImpl) Pay(ctx context.Context, orderID, userID uuid.UUID, email string) (*ClientHandle, error) {
	ord, err := u.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.UserID() != userID {
		return nil, ErrNotOrderOwner
	}
	if ord.PaymentMethod() == order.PaymentCash {
		return nil, ErrPaymentNotRequired
	}
	if ord.Status() != order.StatusPending {
		return nil, ErrPaymentNotConfirmable
	}
	return u.openCheckout(ctx, ord, email)
}

// ConfirmPayment applies a verified provider callback. The move to Paid is a
// conditional update keyed on the payment reference and the Pending status,
// so a replayed event finds zero rows and the original paidAt stands.
func (u *orderUseCaseImpl) ConfirmPayment(ctx context.Context, payload []byte, signature string) error {
	notice, err := u.verifier.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}
	if !notice.Completed || notice.SessionID == "" {
		return nil
	}

	now := u.clock.Now()
	moved, err := u.orderRepo.MarkPaid(ctx, u.db, notice.SessionID, now)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !moved {
		ord, err := u.orderRepo.FindByPaymentRef(ctx, u.db, notice.SessionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("payment confirmation for unknown reference dropped",
					"payment_ref", notice.SessionID)
				return nil
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if ord.IsPaid() {
			return nil
		}
		slog.Warn("stale payment confirmation dropped",
			"order_id", ord.ID(), "status", ord.Status())
		return nil
	}

	paid, err := u.orderRepo.FindByPaymentRef(ctx, u.db, notice.SessionID)
	if err != nil {
		slog.Warn("consistency warning: paid order not readable for event", "error", err)
		return nil
	}
	if err := u.publisher.PublishOrderPaid(ctx, OrderPaidEvent{
		OrderID:    paid.ID(),
		PaymentRef: notice.SessionID,
		OccurredAt: now,
	}); err != nil {
		slog.Warn("consistency warning: order paid event not published",
			"order_id", paid.ID(), "error", err)
	}
	return nil
}

// Cancel moves a Pending or Placed order to Canceled inside the cancellation
// window and gives the reserved stock back in the same transaction.
func (u *orderUseCaseImpl) Cancel(ctx context.Context, orderID, actorID uuid.UUID, isAdmin bool) error {
	return u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		ord, err := u.orderRepo.FindByID(ctx, db, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !isAdmin && ord.UserID() != actorID {
			return ErrNotOrderOwner
		}
		if err := ord.CancelableAt(u.clock.Now(), u.cfg.CancelWindow); err != nil {
			return err
		}

		moved, err := u.orderRepo.MarkCanceled(ctx, db, orderID, actorID, u.clock.Now())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !moved {
			return order.ErrInvalidTransition
		}

		for _, item := range ord.Items() {
			if err := u.productRepo.Release(ctx, db, item.ProductID, item.Quantity); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
}

// Deliver is admin-only and keyed on Placed; when two admins race, the
// conditional update lets exactly one through.
func (u *orderUseCaseImpl) Deliver(ctx context.Context, orderID, adminID uuid.UUID) error {
	moved, err := u.orderRepo.MarkDelivered(ctx, u.db, orderID, adminID, u.clock.Now())
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if moved {
		return nil
	}
	if _, err := u.findOrder(ctx, orderID); err != nil {
		return err
	}
	return order.ErrInvalidTransition
}

// Refund asks the provider first and commits the state move only after the
// provider confirms; a gateway failure leaves the order Paid.
func (u *orderUseCaseImpl) Refund(ctx context.Context, orderID, adminID uuid.UUID) error {
	ord, err := u.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if ord.Status() != order.StatusPaid {
		return order.ErrInvalidTransition
	}
	if ord.PaymentRef() == nil {
		return ErrPaymentNotRequired
	}

	if _, err := u.gateway.Refund(ctx, orderID, *ord.PaymentRef()); err != nil {
		return err
	}

	moved, err := u.orderRepo.MarkRefunded(ctx, u.db, orderID, adminID, u.clock.Now())
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !moved {
		return order.ErrInvalidTransition
	}
	return nil
}

func (u *orderUseCaseImpl) resolveCoupon(
	ctx context.Context,
	db repository.DBTX,
	code *string,
	userID uuid.UUID,
) (*coupon.Coupon, error) {
	if code == nil {
		return nil, nil
	}

	// Codes are stored normalized; parse the raw input the same way the
	// dry-run path does so "SUMMER-SALE" finds "summer-sale".
	normalized, err := coupon.NewCode(*code)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	coup, err := u.couponRepo.FindByCode(ctx, db, normalized.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	assignment, err := u.couponRepo.FindAssignment(ctx, db, coup.ID(), userID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := coup.ValidateFor(u.clock.Now(), assignment); err != nil {
		return nil, err
	}
	return coup, nil
}

func (u *orderUseCaseImpl) reserveItems(
	ctx context.Context,
	db repository.DBTX,
	items []reqdto.OrderItemRequest,
) ([]order.LineItem, error) {
	lineItems := make([]order.LineItem, 0, len(items))
	for _, item := range items {
		snapshot, err := u.productRepo.Reserve(ctx, db, item.ProductID, item.Quantity)
		if err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return nil, ErrProductUnavailable
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		lineItem, err := order.NewLineItem(snapshot.ID, snapshot.Title, item.Quantity, snapshot.AppliedPriceCents)
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		lineItems = append(lineItems, lineItem)
	}
	return lineItems, nil
}

// consumeCouponUsage increments the per-user counter conditionally; losing
// the race on the last remaining use fails the whole order transaction.
func (u *orderUseCaseImpl) consumeCouponUsage(
	ctx context.Context,
	db repository.DBTX,
	coup *coupon.Coupon,
	userID uuid.UUID,
) error {
	if coup == nil {
		return nil
	}
	ok, err := u.couponRepo.IncrementUsage(ctx, db, coup.ID(), userID)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !ok {
		return coupon.ErrUsageExceeded
	}
	return nil
}

// finishPlacement runs the post-commit side effects: the placed event, the
// checkout session for card methods and the receipt. Failures here degrade
// the response but never undo the committed order.
func (u *orderUseCaseImpl) finishPlacement(
	ctx context.Context,
	orderID, userID uuid.UUID,
	email string,
	paymentMethod order.PaymentMethod,
) (*PlaceOrderResult, error) {
	ord, err := u.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := u.publisher.PublishOrderPlaced(ctx, OrderPlacedEvent{
		OrderID:       orderID,
		UserID:        userID,
		TotalCents:    ord.TotalCents(),
		PaymentMethod: paymentMethod.String(),
		Status:        ord.Status().String(),
		OccurredAt:    u.clock.Now(),
	}); err != nil {
		slog.Warn("consistency warning: order placed event not published",
			"order_id", orderID, "error", err)
	}

	result := &PlaceOrderResult{
		Receipt: receipt.New(orderID, ord.Status().String(), ord.TotalCents(), paymentMethod.String(), u.clock.Now()),
	}

	if paymentMethod != order.PaymentCash {
		handle, err := u.openCheckout(ctx, ord, email)
		if err != nil {
			slog.Warn("checkout session creation failed, order stays pending",
				"order_id", orderID, "error", err)
			result.PaymentDegraded = true
		} else {
			result.Payment = handle
		}
	}

	view, err := u.orderQueries.GetByID(ctx, orderID)
	if err != nil {
		slog.Warn("consistency warning: placed order view not readable",
			"order_id", orderID, "error", err)
		return result, nil
	}
	result.Order = view
	return result, nil
}

func (u *orderUseCaseImpl) openCheckout(ctx context.Context, ord *order.Order, email string) (*ClientHandle, error) {
	var discountRef *string
	if ord.CouponID() != nil {
		coup, err := u.couponRepo.FindByID(ctx, u.db, *ord.CouponID())
		if err == nil {
			if ref, refErr := u.gateway.CreateDiscountRef(ctx, coup); refErr == nil {
				discountRef = &ref
			} else {
				slog.Warn("provider discount mirror failed, charging undiscounted session",
					"order_id", ord.ID(), "error", refErr)
			}
		}
	}

	handle, err := u.gateway.CreateCharge(ctx, ChargeRequest{
		OrderID:       ord.ID(),
		UserID:        ord.UserID(),
		CustomerEmail: email,
		Items:         ord.Items(),
		TotalCents:    ord.TotalCents(),
		DiscountRef:   discountRef,
	})
	if err != nil {
		return nil, err
	}

	if err := u.orderRepo.SetPaymentRef(ctx, u.db, ord.ID(), handle.SessionID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return handle, nil
}

func (u *orderUseCaseImpl) findOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	ord, err := u.orderRepo.FindByID(ctx, u.db, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return ord, nil
}
