package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
)

// OrderRepository persists orders and moves their status with conditional
// updates: every transition names the status it expects to leave, so two
// concurrent movers cannot both win and an illegal jump never reaches the row.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

const orderColumns = `
	id, user_id, address, city, postal_code, country, phone_numbers,
	shipping_cents, total_cents, coupon_id, payment_method, status,
	paid_at, delivered_at, delivered_by, canceled_at, canceled_by,
	refunded_at, refunded_by, payment_ref, created_at, updated_at
`

func (r *OrderRepository) Create(ctx context.Context, db DBTX, o *order.Order) error {
	const orderQuery = `
		INSERT INTO orders (
			id, user_id, address, city, postal_code, country, phone_numbers,
			shipping_cents, total_cents, coupon_id, payment_method, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	const itemQuery = `
		INSERT INTO order_items (order_id, product_id, title, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`

	addr := o.Address()
	_, err := db.Exec(ctx, orderQuery,
		o.ID(), o.UserID(), addr.Address, addr.City, addr.PostalCode, addr.Country,
		o.PhoneNumbers(), o.ShippingCents(), o.TotalCents(), o.CouponID(),
		o.PaymentMethod().String(), o.Status().String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, item := range o.Items() {
		_, err := db.Exec(ctx, itemQuery, o.ID(), item.ProductID, item.Title, item.Quantity, item.UnitPriceCents)
		if err != nil {
			return infra.WrapRepoErr("failed to create order item", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.loadOrder(ctx, db, db.QueryRow(ctx, query, id))
}

func (r *OrderRepository) FindByPaymentRef(ctx context.Context, db DBTX, ref string) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_ref = $1`
	return r.loadOrder(ctx, db, db.QueryRow(ctx, query, ref))
}

func (r *OrderRepository) SetPaymentRef(ctx context.Context, db DBTX, id uuid.UUID, ref string) error {
	const query = `
		UPDATE orders SET payment_ref = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query, id, ref)
	if err != nil {
		return infra.WrapRepoErr("failed to set payment reference", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found for payment reference", nil, infra.KindNotFound)
	}
	return nil
}

// MarkPaid confirms payment by provider session reference, only out of
// Pending. Zero rows on a replayed callback makes the webhook idempotent.
func (r *OrderRepository) MarkPaid(ctx context.Context, db DBTX, ref string, at time.Time) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'Paid', paid_at = $2, updated_at = now()
		WHERE payment_ref = $1 AND status = 'Pending'
	`

	tag, err := db.Exec(ctx, query, ref, at)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order paid", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) MarkDelivered(ctx context.Context, db DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'Delivered', delivered_at = $3, delivered_by = $2, updated_at = now()
		WHERE id = $1 AND status = 'Placed'
	`

	tag, err := db.Exec(ctx, query, id, by, at)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order delivered", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) MarkCanceled(ctx context.Context, db DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'Canceled', canceled_at = $3, canceled_by = $2, updated_at = now()
		WHERE id = $1 AND status IN ('Pending', 'Placed')
	`

	tag, err := db.Exec(ctx, query, id, by, at)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order canceled", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) MarkRefunded(ctx context.Context, db DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	const query = `
		UPDATE orders
		SET status = 'Refunded', refunded_at = $3, refunded_by = $2, updated_at = now()
		WHERE id = $1 AND status = 'Paid'
	`

	tag, err := db.Exec(ctx, query, id, by, at)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark order refunded", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) loadOrder(ctx context.Context, db DBTX, row pgx.Row) (*order.Order, error) {
	var (
		id, userID                         uuid.UUID
		address, city, postalCode, country string
		phoneNumbers                       []string
		shippingCents, totalCents          int64
		couponID                           *uuid.UUID
		paymentMethod, status              string
		paidAt, deliveredAt                *time.Time
		deliveredBy                        *uuid.UUID
		canceledAt                         *time.Time
		canceledBy                         *uuid.UUID
		refundedAt                         *time.Time
		refundedBy                         *uuid.UUID
		paymentRef                         *string
		createdAt, updatedAt               time.Time
	)

	err := row.Scan(
		&id, &userID, &address, &city, &postalCode, &country, &phoneNumbers,
		&shippingCents, &totalCents, &couponID, &paymentMethod, &status,
		&paidAt, &deliveredAt, &deliveredBy, &canceledAt, &canceledBy,
		&refundedAt, &refundedBy, &paymentRef, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan order", err)
	}

	items, err := r.loadItems(ctx, db, id)
	if err != nil {
		return nil, err
	}

	return order.Reconstruct(
		id, userID, items,
		order.ShippingAddress{Address: address, City: city, PostalCode: postalCode, Country: country},
		phoneNumbers, shippingCents, totalCents, couponID,
		order.PaymentMethod(paymentMethod), order.Status(status),
		paidAt, deliveredAt, deliveredBy, canceledAt, canceledBy,
		refundedAt, refundedBy, paymentRef, createdAt, updatedAt,
	), nil
}

func (r *OrderRepository) loadItems(ctx context.Context, db DBTX, orderID uuid.UUID) ([]order.LineItem, error) {
	const query = `
		SELECT product_id, title, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY title
	`

	rows, err := db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var items []order.LineItem
	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}
