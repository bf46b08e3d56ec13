package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrCouponDisabled   = errors.New("coupon is disabled")
	ErrCouponNotStarted = errors.New("coupon is not started yet")
	ErrNotAssigned      = errors.New("coupon is not assigned to this user")
	ErrUsageExceeded    = errors.New("coupon exceeded the max usage")
	ErrAlreadyEnabled   = errors.New("coupon is already enabled")
	ErrAlreadyDisabled  = errors.New("coupon is already disabled")
	ErrInvalidWindow    = errors.New("coupon validity window is invalid")
)

// Status is recomputed periodically by the expiry sweep; ValidateFor also
// checks toDate directly so a stale status cannot resurrect an expired coupon.
type Status string

const (
	StatusValid   Status = "valid"
	StatusExpired Status = "expired"
)

type Coupon struct {
	id       uuid.UUID
	code     Code
	discount Discount
	status   Status
	fromDate time.Time
	toDate   time.Time
	enabled  bool
	addedBy  uuid.UUID

	disabledStamp *AuditStamp
	enabledStamp  *AuditStamp
	updatedStamp  *AuditStamp

	createdAt time.Time
	updatedAt time.Time
}

func NewCoupon(
	id uuid.UUID,
	code string,
	amountOffCents *int64,
	percentOff *float64,
	fromDate, toDate time.Time,
	addedBy uuid.UUID,
) (*Coupon, error) {
	couponCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	discount, err := NewDiscount(amountOffCents, percentOff)
	if err != nil {
		return nil, err
	}

	if !toDate.After(fromDate) {
		return nil, ErrInvalidWindow
	}

	return &Coupon{
		id:       id,
		code:     couponCode,
		discount: discount,
		status:   StatusValid,
		fromDate: fromDate,
		toDate:   toDate,
		enabled:  true,
		addedBy:  addedBy,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	code Code,
	discount Discount,
	status Status,
	fromDate, toDate time.Time,
	enabled bool,
	addedBy uuid.UUID,
	disabledStamp, enabledStamp, updatedStamp *AuditStamp,
	createdAt, updatedAt time.Time,
) *Coupon {
	return &Coupon{
		id:            id,
		code:          code,
		discount:      discount,
		status:        status,
		fromDate:      fromDate,
		toDate:        toDate,
		enabled:       enabled,
		addedBy:       addedBy,
		disabledStamp: disabledStamp,
		enabledStamp:  enabledStamp,
		updatedStamp:  updatedStamp,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ValidateFor runs the usage checks in a fixed order, short-circuiting on the
// first failure: expired, disabled, not started, not assigned, usage ceiling.
// It never mutates usage; the count is only incremented once the order that
// applies the coupon has been durably created.
func (c *Coupon) ValidateFor(now time.Time, assignment *Assignment) error {
	if c.status == StatusExpired || now.After(c.toDate) {
		return ErrCouponExpired
	}
	if !c.enabled {
		return ErrCouponDisabled
	}
	if now.Before(c.fromDate) {
		return ErrCouponNotStarted
	}
	if assignment == nil {
		return ErrNotAssigned
	}
	if assignment.UsageCount >= assignment.MaxUsage {
		return ErrUsageExceeded
	}
	return nil
}

func (c *Coupon) Disable(by uuid.UUID, at time.Time) error {
	if !c.enabled {
		return ErrAlreadyDisabled
	}
	c.enabled = false
	c.disabledStamp = &AuditStamp{By: by, At: at}
	return nil
}

func (c *Coupon) Enable(by uuid.UUID, at time.Time) error {
	if c.enabled {
		return ErrAlreadyEnabled
	}
	c.enabled = true
	c.enabledStamp = &AuditStamp{By: by, At: at}
	return nil
}

func (c *Coupon) MarkExpired() {
	c.status = StatusExpired
}

func (c *Coupon) ID() uuid.UUID              { return c.id }
func (c *Coupon) Code() Code                 { return c.code }
func (c *Coupon) Discount() Discount         { return c.discount }
func (c *Coupon) Status() Status             { return c.status }
func (c *Coupon) FromDate() time.Time        { return c.fromDate }
func (c *Coupon) ToDate() time.Time          { return c.toDate }
func (c *Coupon) Enabled() bool              { return c.enabled }
func (c *Coupon) AddedBy() uuid.UUID         { return c.addedBy }
func (c *Coupon) DisabledStamp() *AuditStamp { return c.disabledStamp }
func (c *Coupon) EnabledStamp() *AuditStamp  { return c.enabledStamp }
func (c *Coupon) UpdatedStamp() *AuditStamp  { return c.updatedStamp }
func (c *Coupon) CreatedAt() time.Time       { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time       { return c.updatedAt }
