package coupon

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount must be positive")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrDiscountKindConflict   = errors.New("discount can only be either fixed amount or percentage, not both")
	ErrDiscountKindMissing    = errors.New("discount must have either fixed amount or percentage")
)

// Codes are stored lower-cased so lookups are case-insensitive.
var couponCodeRegex = regexp.MustCompile(`^[a-z0-9-]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

// Discount is fixed XOR percentage; both set or neither set is rejected at
// construction so the invariant holds for every reachable value.
type Discount struct {
	amountOffCents *int64
	percentOff     *float64
}

func NewFixedDiscount(amountOffCents int64) (Discount, error) {
	if amountOffCents <= 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOffCents: &amountOffCents}, nil
}

func NewPercentageDiscount(percentOff float64) (Discount, error) {
	if percentOff <= 0 || percentOff > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{percentOff: &percentOff}, nil
}

func NewDiscount(amountOffCents *int64, percentOff *float64) (Discount, error) {
	if amountOffCents != nil && percentOff != nil {
		return Discount{}, ErrDiscountKindConflict
	}
	if amountOffCents == nil && percentOff == nil {
		return Discount{}, ErrDiscountKindMissing
	}
	if amountOffCents != nil {
		return NewFixedDiscount(*amountOffCents)
	}
	return NewPercentageDiscount(*percentOff)
}

func (d Discount) IsFixed() bool {
	return d.amountOffCents != nil
}

func (d Discount) IsPercentage() bool {
	return d.percentOff != nil
}

func (d Discount) AmountOffCents() int64 {
	if d.amountOffCents != nil {
		return *d.amountOffCents
	}
	return 0
}

func (d Discount) PercentOff() float64 {
	if d.percentOff != nil {
		return *d.percentOff
	}
	return 0
}

// AuditStamp records who flipped an administrative switch and when.
type AuditStamp struct {
	By uuid.UUID
	At time.Time
}
