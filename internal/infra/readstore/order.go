package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/queries"
)

// OrderReadStore serves the read side straight from the write tables; the
// coupon code is joined in so responses do not need a second lookup.
type OrderReadStore struct {
	db *pgxpool.Pool
}

func NewOrderReadStore(db *pgxpool.Pool) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const query = `
		SELECT o.id, o.user_id, o.address, o.city, o.postal_code, o.country, o.phone_numbers,
		       o.shipping_cents, o.total_cents, o.coupon_id, c.code,
		       o.payment_method, o.status,
		       o.paid_at, o.delivered_at, o.canceled_at, o.refunded_at,
		       o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE o.id = $1
	`

	var v queries.OrderView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.UserID, &v.Address, &v.City, &v.PostalCode, &v.Country, &v.PhoneNumbers,
		&v.ShippingCents, &v.TotalCents, &v.CouponID, &v.CouponCode,
		&v.PaymentMethod, &v.Status,
		&v.PaidAt, &v.DeliveredAt, &v.CanceledAt, &v.RefundedAt,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

func (r *OrderReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	const query = `
		SELECT id, total_cents, payment_method, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders by user", err)
	}
	defer rows.Close()

	var result []*queries.OrderListItem
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.ID, &item.TotalCents, &item.PaymentMethod, &item.Status, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order list", err)
	}
	return result, nil
}

func (r *OrderReadStore) findItems(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	const query = `
		SELECT product_id, title, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY title
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order item views", err)
	}
	defer rows.Close()

	var items []queries.OrderItemView
	for rows.Next() {
		var item queries.OrderItemView
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item view", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item views", err)
	}
	return items, nil
}
