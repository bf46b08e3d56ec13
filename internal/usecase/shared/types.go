package shared

import "github.com/google/uuid"

// ProductSnapshot is the catalog projection the order flow needs: enough to
// freeze a line item and to know how much stock remained after a reservation.
type ProductSnapshot struct {
	ID                uuid.UUID
	Title             string
	AppliedPriceCents int64
	Stock             int32
}
