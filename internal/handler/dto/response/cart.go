package response

import (
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/queries"
)

type CartLineResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Title          string    `json:"title"`
	Quantity       int32     `json:"quantity"`
	BasePriceCents int64     `json:"basePriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"userId"`
	Lines         []CartLineResponse `json:"lines"`
	SubTotalCents int64              `json:"subTotalCents"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func FromCartView(rm *queries.CartView) *CartResponse {
	lines := make([]CartLineResponse, 0, len(rm.Lines))
	for _, line := range rm.Lines {
		lines = append(lines, CartLineResponse{
			ProductID:      line.ProductID,
			Title:          line.Title,
			Quantity:       line.Quantity,
			BasePriceCents: line.BasePriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}

	return &CartResponse{
		ID:            rm.ID,
		UserID:        rm.UserID,
		Lines:         lines,
		SubTotalCents: rm.SubTotalCents,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
	}
}
