package request

import (
	"time"

	"github.com/google/uuid"
)

type CouponAssignmentRequest struct {
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	MaxUsage int32     `json:"max_usage" binding:"required,min=1"`
}

type AddCouponRequest struct {
	Code           string                    `json:"code" binding:"required"`
	AmountOffCents *int64                    `json:"amount_off_cents,omitempty"`
	PercentOff     *float64                  `json:"percent_off,omitempty"`
	FromDate       time.Time                 `json:"from_date" binding:"required"`
	ToDate         time.Time                 `json:"to_date" binding:"required"`
	Assignments    []CouponAssignmentRequest `json:"assignments" binding:"required,min=1,dive"`
}

type UpdateCouponRequest struct {
	Code           *string    `json:"code,omitempty"`
	AmountOffCents *int64     `json:"amount_off_cents,omitempty"`
	PercentOff     *float64   `json:"percent_off,omitempty"`
	FromDate       *time.Time `json:"from_date,omitempty"`
	ToDate         *time.Time `json:"to_date,omitempty"`
	// NewAssignments extends the eligible-user list; existing assignments
	// are never touched by an update.
	NewAssignments []CouponAssignmentRequest `json:"new_assignments,omitempty" binding:"omitempty,dive"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}
