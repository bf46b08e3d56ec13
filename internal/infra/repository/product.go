package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/shared"
)

// ProductRepository is the inventory guard over the catalog's product rows.
// Stock mutations are single conditional writes; there is no read-modify-write
// anywhere, so concurrent reservations against the same product serialize at
// the row and stock can never go negative.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*shared.ProductSnapshot, error) {
	const query = `
		SELECT id, title, applied_price_cents, stock
		FROM products
		WHERE id = $1
	`

	var p shared.ProductSnapshot
	err := db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Title, &p.AppliedPriceCents, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	return &p, nil
}

// Reserve verifies availability and decrements stock in one conditional
// UPDATE. Zero rows means not-found or insufficient stock; the two are
// deliberately indistinguishable so stock levels do not leak.
func (r *ProductRepository) Reserve(ctx context.Context, db DBTX, id uuid.UUID, quantity int32) (*shared.ProductSnapshot, error) {
	const query = `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING id, title, applied_price_cents, stock
	`

	var p shared.ProductSnapshot
	err := db.QueryRow(ctx, query, id, quantity).Scan(&p.ID, &p.Title, &p.AppliedPriceCents, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("product unavailable", err, infra.KindConflict)
		}
		return nil, infra.WrapRepoErr("failed to reserve stock", err)
	}
	return &p, nil
}

// Release is the compensating increment for a canceled order.
func (r *ProductRepository) Release(ctx context.Context, db DBTX, id uuid.UUID, quantity int32) error {
	const query = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
	`

	if _, err := db.Exec(ctx, query, id, quantity); err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	return nil
}
