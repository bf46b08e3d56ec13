package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/infra"
)

// CartRepository keeps one cart row per user plus its lines. Saves replace
// the whole line set; carts are small, so a diff is not worth the code.
type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) FindByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*cart.Cart, error) {
	const cartQuery = `
		SELECT id, user_id, sub_total_cents, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`
	const linesQuery = `
		SELECT product_id, title, quantity, base_price_cents, line_total_cents
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY added_at
	`

	var (
		id                   uuid.UUID
		owner                uuid.UUID
		subTotal             int64
		createdAt, updatedAt time.Time
	)
	err := db.QueryRow(ctx, cartQuery, userID).Scan(&id, &owner, &subTotal, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}

	rows, err := db.Query(ctx, linesQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var line cart.Line
		if err := rows.Scan(&line.ProductID, &line.Title, &line.Quantity, &line.BasePriceCents, &line.LineTotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}

	return cart.Reconstruct(id, owner, lines, subTotal, createdAt, updatedAt), nil
}

// Save upserts the cart row keyed by user and rewrites its lines.
func (r *CartRepository) Save(ctx context.Context, db DBTX, c *cart.Cart) error {
	const upsertQuery = `
		INSERT INTO carts (id, user_id, sub_total_cents)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET sub_total_cents = EXCLUDED.sub_total_cents, updated_at = now()
	`
	const clearQuery = `DELETE FROM cart_lines WHERE cart_id = $1`
	const lineQuery = `
		INSERT INTO cart_lines (cart_id, product_id, title, quantity, base_price_cents, line_total_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := db.Exec(ctx, upsertQuery, c.ID(), c.UserID(), c.SubTotalCents()); err != nil {
		return infra.WrapRepoErr("failed to save cart", err)
	}
	if _, err := db.Exec(ctx, clearQuery, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}
	for _, line := range c.Lines() {
		_, err := db.Exec(ctx, lineQuery, c.ID(), line.ProductID, line.Title, line.Quantity, line.BasePriceCents, line.LineTotalCents)
		if err != nil {
			return infra.WrapRepoErr("failed to save cart line", err)
		}
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, db DBTX, userID uuid.UUID) error {
	const query = `DELETE FROM carts WHERE user_id = $1`

	if _, err := db.Exec(ctx, query, userID); err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}
