package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CartLineView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	Quantity       int32     `json:"quantity"`
	BasePriceCents int64     `json:"base_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

type CartView struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	Lines         []CartLineView `json:"lines"`
	SubTotalCents int64          `json:"sub_total_cents"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CartQueries interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type CartViewRepo interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	repo CartViewRepo
}

func NewCartQueries(repo CartViewRepo) CartQueries {
	return &cartQueriesImpl{repo: repo}
}

func (q *cartQueriesImpl) GetByUser(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	return q.repo.FindByUserID(ctx, userID)
}
