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

type CartReadStore struct {
	db *pgxpool.Pool
}

func NewCartReadStore(db *pgxpool.Pool) *CartReadStore {
	return &CartReadStore{db: db}
}

func (r *CartReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*queries.CartView, error) {
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

	var v queries.CartView
	err := r.db.QueryRow(ctx, cartQuery, userID).Scan(&v.ID, &v.UserID, &v.SubTotalCents, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart view", err)
	}

	rows, err := r.db.Query(ctx, linesQuery, v.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart line views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line queries.CartLineView
		if err := rows.Scan(&line.ProductID, &line.Title, &line.Quantity, &line.BasePriceCents, &line.LineTotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line view", err)
		}
		v.Lines = append(v.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart line views", err)
	}
	return &v, nil
}
