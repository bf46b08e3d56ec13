package coupon

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidMaxUsage = errors.New("max usage must be at least 1")

// Assignment binds a coupon to one user with a usage ceiling. The counter
// itself is advanced with a conditional update at the storage layer, so the
// usageCount <= maxUsage invariant holds under concurrent order creation;
// this struct is the read-side snapshot of that row.
type Assignment struct {
	CouponID   uuid.UUID
	UserID     uuid.UUID
	MaxUsage   int32
	UsageCount int32
}

func NewAssignment(couponID, userID uuid.UUID, maxUsage int32) (*Assignment, error) {
	if maxUsage < 1 {
		return nil, ErrInvalidMaxUsage
	}
	return &Assignment{
		CouponID: couponID,
		UserID:   userID,
		MaxUsage: maxUsage,
	}, nil
}

func (a *Assignment) Remaining() int32 {
	if a.UsageCount >= a.MaxUsage {
		return 0
	}
	return a.MaxUsage - a.UsageCount
}
