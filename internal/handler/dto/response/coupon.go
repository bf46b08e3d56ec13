package response

import (
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/queries"
)

type CouponResponse struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	AmountOffCents *int64     `json:"amountOffCents,omitempty"`
	PercentOff     *float64   `json:"percentOff,omitempty"`
	Status         string     `json:"status"`
	FromDate       time.Time  `json:"fromDate"`
	ToDate         time.Time  `json:"toDate"`
	IsEnabled      bool       `json:"isEnabled"`
	AddedBy        uuid.UUID  `json:"addedBy"`
	DisabledAt     *time.Time `json:"disabledAt,omitempty"`
	EnabledAt      *time.Time `json:"enabledAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type CouponAssignmentResponse struct {
	UserID     uuid.UUID `json:"userId"`
	MaxUsage   int32     `json:"maxUsage"`
	UsageCount int32     `json:"usageCount"`
}

func FromCouponView(rm *queries.CouponView) *CouponResponse {
	return &CouponResponse{
		ID:             rm.ID,
		Code:           rm.Code,
		AmountOffCents: rm.AmountOffCents,
		PercentOff:     rm.PercentOff,
		Status:         rm.Status,
		FromDate:       rm.FromDate,
		ToDate:         rm.ToDate,
		IsEnabled:      rm.IsEnabled,
		AddedBy:        rm.AddedBy,
		DisabledAt:     rm.DisabledAt,
		EnabledAt:      rm.EnabledAt,
		CreatedAt:      rm.CreatedAt,
		UpdatedAt:      rm.UpdatedAt,
	}
}

func FromCouponViews(rms []*queries.CouponView) []*CouponResponse {
	result := make([]*CouponResponse, 0, len(rms))
	for _, rm := range rms {
		result = append(result, FromCouponView(rm))
	}
	return result
}

func FromCouponAssignmentView(rm *queries.CouponAssignmentView) *CouponAssignmentResponse {
	return &CouponAssignmentResponse{
		UserID:     rm.UserID,
		MaxUsage:   rm.MaxUsage,
		UsageCount: rm.UsageCount,
	}
}
