package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	stripecoupon "github.com/stripe/stripe-go/v81/coupon"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"

	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
)

// GatewayError separates retryable provider failures (network, rate limits,
// provider 5xx) from permanent rejections.
type GatewayError struct {
	Retryable bool
	err       error
}

func NewGatewayError(retryable bool, err error) *GatewayError {
	return &GatewayError{Retryable: retryable, err: err}
}

func (e *GatewayError) Error() string {
	return e.err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.err
}

// StripeGateway opens hosted checkout sessions for card payments, issues
// refunds and authenticates webhook callbacks.
type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      cfg.Currency,
	}
}

// CreateCharge opens a checkout session for an already-created order. Line
// items carry inline price data in cents, so no provider-side catalog is
// needed. The session id becomes the order's payment reference.
func (g *StripeGateway) CreateCharge(ctx context.Context, req commands.ChargeRequest) (*commands.ClientHandle, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(item.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Title),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(g.successURL),
		CancelURL:     stripe.String(g.cancelURL),
		Metadata: map[string]string{
			"order_id": req.OrderID.String(),
			"user_id":  req.UserID.String(),
		},
	}
	params.Context = ctx
	if req.DiscountRef != nil {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(*req.DiscountRef)},
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, wrapStripeErr(err, "failed to create checkout session")
	}
	return &commands.ClientHandle{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreateDiscountRef mirrors a storefront coupon on the provider so hosted
// checkout shows the discounted amount. Keyed by coupon id, so a re-create
// after a transient failure is a no-op on the provider.
func (g *StripeGateway) CreateDiscountRef(ctx context.Context, c *coupon.Coupon) (string, error) {
	params := &stripe.CouponParams{
		Name:     stripe.String(c.Code().String()),
		Duration: stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.Context = ctx
	params.SetIdempotencyKey("coupon-" + c.ID().String())

	if c.Discount().IsFixed() {
		params.AmountOff = stripe.Int64(c.Discount().AmountOffCents())
		params.Currency = stripe.String(g.currency)
	} else {
		params.PercentOff = stripe.Float64(c.Discount().PercentOff())
	}

	created, err := stripecoupon.New(params)
	if err != nil {
		return "", wrapStripeErr(err, "failed to create provider coupon")
	}
	return created.ID, nil
}

// Refund reverses the full charge behind a checkout session. The idempotency
// key is derived from the order id so replays cannot refund twice.
func (g *StripeGateway) Refund(ctx context.Context, orderID uuid.UUID, paymentRef string) (*commands.RefundResult, error) {
	sess, err := session.Get(paymentRef, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, wrapStripeErr(err, "failed to load checkout session for refund")
	}
	if sess.PaymentIntent == nil {
		return nil, &GatewayError{err: errs.New("checkout session has no payment intent")}
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + orderID.String())

	ref, err := refund.New(params)
	if err != nil {
		return nil, wrapStripeErr(err, "failed to create refund")
	}
	return &commands.RefundResult{RefundID: ref.ID, Status: string(ref.Status)}, nil
}

// VerifyEvent authenticates the raw webhook payload against its signature
// header and reduces the event to what the order flow consumes.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*commands.PaymentNotice, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, &GatewayError{err: errs.Wrap(err, "webhook signature verification failed")}
	}

	notice := &commands.PaymentNotice{
		Completed: event.Type == "checkout.session.completed",
	}
	if id, ok := event.Data.Object["id"].(string); ok {
		notice.SessionID = id
	}
	return notice, nil
}

func wrapStripeErr(err error, msg string) error {
	wrapped := &GatewayError{err: errs.Wrap(err, msg)}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == 429, stripeErr.HTTPStatusCode >= 500:
			wrapped.Retryable = true
		case stripeErr.Type == stripe.ErrorType("api_connection_error"):
			wrapped.Retryable = true
		}
		return wrapped
	}

	// Transport-level failures with no structured error are worth a retry.
	if strings.Contains(err.Error(), "connection") || strings.Contains(err.Error(), "timeout") {
		wrapped.Retryable = true
	}
	return wrapped
}
