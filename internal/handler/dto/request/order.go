package request

import (
	"strings"

	"github.com/google/uuid"

	"storefront-core/internal/domain/order"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (r ShippingAddressRequest) ToDomain() (order.ShippingAddress, error) {
	return order.NewShippingAddress(r.Address, r.City, r.PostalCode, r.Country)
}

type PlaceOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PhoneNumbers    []string               `json:"phone_numbers" binding:"required,min=1"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	CouponCode      *string                `json:"coupon_code,omitempty"`
}

func (r PlaceOrderRequest) GetCouponCode() *string {
	return normalizeCouponCode(r.CouponCode)
}

type PlaceOrderFromCartRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PhoneNumbers    []string               `json:"phone_numbers" binding:"required,min=1"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	CouponCode      *string                `json:"coupon_code,omitempty"`
}

func (r PlaceOrderFromCartRequest) GetCouponCode() *string {
	return normalizeCouponCode(r.CouponCode)
}

func normalizeCouponCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
