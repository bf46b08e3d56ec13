package receipt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// Receipt is the artifact handed back with a created order: a compact summary
// plus a scannable QR rendering of it. Generation failures degrade the
// response but never fail the order.
type Receipt struct {
	OrderID       uuid.UUID `json:"order_id"`
	Status        string    `json:"status"`
	TotalCents    int64     `json:"total_cents"`
	PaymentMethod string    `json:"payment_method"`
	IssuedAt      time.Time `json:"issued_at"`
}

func New(orderID uuid.UUID, status string, totalCents int64, paymentMethod string, issuedAt time.Time) Receipt {
	return Receipt{
		OrderID:       orderID,
		Status:        status,
		TotalCents:    totalCents,
		PaymentMethod: paymentMethod,
		IssuedAt:      issuedAt,
	}
}

// QRDataURL encodes the receipt payload as a PNG QR code wrapped in a data
// URL, ready to embed in a client page or printable invoice.
func (r Receipt) QRDataURL() (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.High, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
