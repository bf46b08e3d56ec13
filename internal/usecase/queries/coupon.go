package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CouponAssignmentView struct {
	UserID     uuid.UUID `json:"user_id"`
	MaxUsage   int32     `json:"max_usage"`
	UsageCount int32     `json:"usage_count"`
}

type CouponView struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	AmountOffCents *int64     `json:"amount_off_cents,omitempty"`
	PercentOff     *float64   `json:"percent_off,omitempty"`
	Status         string     `json:"status"`
	FromDate       time.Time  `json:"from_date"`
	ToDate         time.Time  `json:"to_date"`
	IsEnabled      bool       `json:"is_enabled"`
	AddedBy        uuid.UUID  `json:"added_by"`
	DisabledAt     *time.Time `json:"disabled_at,omitempty"`
	EnabledAt      *time.Time `json:"enabled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CouponQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*CouponView, error)
	ListEnabled(ctx context.Context) ([]*CouponView, error)
	ListDisabled(ctx context.Context) ([]*CouponView, error)
	ListAssignments(ctx context.Context, couponID uuid.UUID) ([]*CouponAssignmentView, error)
}

type CouponViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CouponView, error)
	FindByEnabled(ctx context.Context, enabled bool) ([]*CouponView, error)
	FindAssignments(ctx context.Context, couponID uuid.UUID) ([]*CouponAssignmentView, error)
}

type couponQueriesImpl struct {
	repo CouponViewRepo
}

func NewCouponQueries(repo CouponViewRepo) CouponQueries {
	return &couponQueriesImpl{repo: repo}
}

func (q *couponQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*CouponView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *couponQueriesImpl) ListEnabled(ctx context.Context) ([]*CouponView, error) {
	return q.repo.FindByEnabled(ctx, true)
}

func (q *couponQueriesImpl) ListDisabled(ctx context.Context) ([]*CouponView, error) {
	return q.repo.FindByEnabled(ctx, false)
}

func (q *couponQueriesImpl) ListAssignments(ctx context.Context, couponID uuid.UUID) ([]*CouponAssignmentView, error) {
	return q.repo.FindAssignments(ctx, couponID)
}
