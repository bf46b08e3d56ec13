package response

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type OrderItemResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Title          string    `json:"title"`
	Quantity       int32     `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"userId"`
	Items         []OrderItemResponse `json:"items"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	Country       string              `json:"country"`
	PhoneNumbers  []string            `json:"phoneNumbers"`
	ShippingCents int64               `json:"shippingCents"`
	TotalCents    int64               `json:"totalCents"`
	CouponID      *uuid.UUID          `json:"couponId,omitempty"`
	CouponCode    *string             `json:"couponCode,omitempty"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        string              `json:"status"`
	PaidAt        *time.Time          `json:"paidAt,omitempty"`
	DeliveredAt   *time.Time          `json:"deliveredAt,omitempty"`
	CanceledAt    *time.Time          `json:"canceledAt,omitempty"`
	RefundedAt    *time.Time          `json:"refundedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type OrderListResponse struct {
	ID            uuid.UUID `json:"id"`
	TotalCents    int64     `json:"totalCents"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type PaymentResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type ReceiptResponse struct {
	OrderID       uuid.UUID `json:"orderId"`
	Status        string    `json:"status"`
	TotalCents    int64     `json:"totalCents"`
	PaymentMethod string    `json:"paymentMethod"`
	IssuedAt      time.Time `json:"issuedAt"`
	QRDataURL     string    `json:"qrDataUrl,omitempty"`
}

type PlaceOrderResponse struct {
	Order           *OrderResponse   `json:"order"`
	Payment         *PaymentResponse `json:"payment,omitempty"`
	PaymentDegraded bool             `json:"paymentDegraded,omitempty"`
	Receipt         ReceiptResponse  `json:"receipt"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(rm.Items))
	for _, item := range rm.Items {
		items = append(items, OrderItemResponse{
			ProductID:      item.ProductID,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	return &OrderResponse{
		ID:            rm.ID,
		UserID:        rm.UserID,
		Items:         items,
		Address:       rm.Address,
		City:          rm.City,
		PostalCode:    rm.PostalCode,
		Country:       rm.Country,
		PhoneNumbers:  rm.PhoneNumbers,
		ShippingCents: rm.ShippingCents,
		TotalCents:    rm.TotalCents,
		CouponID:      rm.CouponID,
		CouponCode:    rm.CouponCode,
		PaymentMethod: rm.PaymentMethod,
		Status:        rm.Status,
		PaidAt:        rm.PaidAt,
		DeliveredAt:   rm.DeliveredAt,
		CanceledAt:    rm.CanceledAt,
		RefundedAt:    rm.RefundedAt,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
	}
}

func FromOrderListItem(rm *queries.OrderListItem) *OrderListResponse {
	return &OrderListResponse{
		ID:            rm.ID,
		TotalCents:    rm.TotalCents,
		PaymentMethod: rm.PaymentMethod,
		Status:        rm.Status,
		CreatedAt:     rm.CreatedAt,
	}
}

func FromPlaceOrderResult(result *commands.PlaceOrderResult) *PlaceOrderResponse {
	resp := &PlaceOrderResponse{
		PaymentDegraded: result.PaymentDegraded,
		Receipt: ReceiptResponse{
			OrderID:       result.Receipt.OrderID,
			Status:        result.Receipt.Status,
			TotalCents:    result.Receipt.TotalCents,
			PaymentMethod: result.Receipt.PaymentMethod,
			IssuedAt:      result.Receipt.IssuedAt,
		},
	}
	// Degraded read-back leaves Order nil; the receipt still carries the id.
	if result.Order != nil {
		resp.Order = FromOrderView(result.Order)
	}

	if qr, err := result.Receipt.QRDataURL(); err == nil {
		resp.Receipt.QRDataURL = qr
	} else {
		slog.Warn("receipt qr generation failed", "order_id", result.Receipt.OrderID, "error", err)
	}

	if result.Payment != nil {
		resp.Payment = &PaymentResponse{
			SessionID: result.Payment.SessionID,
			URL:       result.Payment.URL,
		}
	}
	return resp
}
