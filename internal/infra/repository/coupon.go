package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/infra"
)

type CouponRepository struct{}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{}
}

const couponColumns = `
	id, code, amount_off_cents, percent_off, status, from_date, to_date,
	is_enabled, added_by,
	disabled_by, disabled_at, enabled_by, enabled_at, updated_by, updated_audit_at,
	created_at, updated_at
`

func (r *CouponRepository) FindByCode(ctx context.Context, db DBTX, code string) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	return r.scanCoupon(db.QueryRow(ctx, query, code), "coupon not found by code")
}

func (r *CouponRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return r.scanCoupon(db.QueryRow(ctx, query, id), "coupon not found by id")
}

func (r *CouponRepository) Create(ctx context.Context, db DBTX, c *coupon.Coupon) error {
	const query = `
		INSERT INTO coupons (id, code, amount_off_cents, percent_off, status, from_date, to_date, is_enabled, added_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var amountOff *int64
	var percentOff *float64
	if c.Discount().IsFixed() {
		v := c.Discount().AmountOffCents()
		amountOff = &v
	} else {
		v := c.Discount().PercentOff()
		percentOff = &v
	}

	_, err := db.Exec(ctx, query,
		c.ID(), c.Code().String(), amountOff, percentOff,
		string(c.Status()), c.FromDate(), c.ToDate(), c.Enabled(), c.AddedBy(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("coupon code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create coupon", err)
	}
	return nil
}

// Update persists mutable administrative fields; the discount kind itself is
// fixed at creation and only its amount may change.
func (r *CouponRepository) Update(ctx context.Context, db DBTX, c *coupon.Coupon) error {
	const query = `
		UPDATE coupons
		SET code = $2, amount_off_cents = $3, percent_off = $4,
		    from_date = $5, to_date = $6,
		    updated_by = $7, updated_audit_at = $8, updated_at = now()
		WHERE id = $1
	`

	var amountOff *int64
	var percentOff *float64
	if c.Discount().IsFixed() {
		v := c.Discount().AmountOffCents()
		amountOff = &v
	} else {
		v := c.Discount().PercentOff()
		percentOff = &v
	}

	var updatedBy *uuid.UUID
	var updatedAt *time.Time
	if stamp := c.UpdatedStamp(); stamp != nil {
		updatedBy = &stamp.By
		updatedAt = &stamp.At
	}

	tag, err := db.Exec(ctx, query,
		c.ID(), c.Code().String(), amountOff, percentOff,
		c.FromDate(), c.ToDate(), updatedBy, updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("coupon code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to update coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon not found for update", nil, infra.KindNotFound)
	}
	return nil
}

// SetEnabled flips the enable switch together with its audit stamp.
func (r *CouponRepository) SetEnabled(ctx context.Context, db DBTX, c *coupon.Coupon) error {
	const query = `
		UPDATE coupons
		SET is_enabled = $2,
		    disabled_by = $3, disabled_at = $4,
		    enabled_by = $5, enabled_at = $6,
		    updated_at = now()
		WHERE id = $1
	`

	var disabledBy, enabledBy *uuid.UUID
	var disabledAt, enabledAt *time.Time
	if stamp := c.DisabledStamp(); stamp != nil {
		disabledBy, disabledAt = &stamp.By, &stamp.At
	}
	if stamp := c.EnabledStamp(); stamp != nil {
		enabledBy, enabledAt = &stamp.By, &stamp.At
	}

	tag, err := db.Exec(ctx, query, c.ID(), c.Enabled(), disabledBy, disabledAt, enabledBy, enabledAt)
	if err != nil {
		return infra.WrapRepoErr("failed to set coupon enabled flag", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon not found for enable/disable", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CouponRepository) FindAssignment(ctx context.Context, db DBTX, couponID, userID uuid.UUID) (*coupon.Assignment, error) {
	const query = `
		SELECT coupon_id, user_id, max_usage, usage_count
		FROM coupon_assignments
		WHERE coupon_id = $1 AND user_id = $2
	`

	var a coupon.Assignment
	err := db.QueryRow(ctx, query, couponID, userID).Scan(&a.CouponID, &a.UserID, &a.MaxUsage, &a.UsageCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("coupon assignment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon assignment", err)
	}
	return &a, nil
}

func (r *CouponRepository) CreateAssignments(ctx context.Context, db DBTX, assignments []*coupon.Assignment) error {
	const query = `
		INSERT INTO coupon_assignments (coupon_id, user_id, max_usage, usage_count)
		VALUES ($1, $2, $3, 0)
	`

	for _, a := range assignments {
		if _, err := db.Exec(ctx, query, a.CouponID, a.UserID, a.MaxUsage); err != nil {
			if isUniqueViolation(err) {
				return infra.WrapRepoErr("coupon assignment already exists", err, infra.KindDuplicateKey)
			}
			return infra.WrapRepoErr("failed to create coupon assignment", err)
		}
	}
	return nil
}

// IncrementUsage advances the per-user counter with a conditional write keyed
// on the ceiling, so the usageCount <= maxUsage invariant holds under
// concurrent order creation. False means the ceiling was already reached.
func (r *CouponRepository) IncrementUsage(ctx context.Context, db DBTX, couponID, userID uuid.UUID) (bool, error) {
	const query = `
		UPDATE coupon_assignments
		SET usage_count = usage_count + 1, updated_at = now()
		WHERE coupon_id = $1 AND user_id = $2 AND usage_count < max_usage
	`

	tag, err := db.Exec(ctx, query, couponID, userID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment coupon usage", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExpireBefore is the periodic sweep flipping stale coupons to expired.
func (r *CouponRepository) ExpireBefore(ctx context.Context, db DBTX, cutoff time.Time) (int64, error) {
	const query = `
		UPDATE coupons
		SET status = 'expired', updated_at = now()
		WHERE status = 'valid' AND to_date < $1
	`

	tag, err := db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire coupons", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CouponRepository) ListByEnabled(ctx context.Context, db DBTX, enabled bool) ([]*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE is_enabled = $1 ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, enabled)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupons", err)
	}
	defer rows.Close()

	var coupons []*coupon.Coupon
	for rows.Next() {
		c, err := r.scanCoupon(rows, "failed to scan coupon row")
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupon rows", err)
	}
	return coupons, nil
}

func (r *CouponRepository) scanCoupon(row pgx.Row, notFoundMsg string) (*coupon.Coupon, error) {
	var (
		id, addedBy                    uuid.UUID
		code                           string
		amountOff                      *int64
		percentOff                     *float64
		status                         string
		fromDate, toDate               time.Time
		enabled                        bool
		disabledBy, enabledBy, updBy   *uuid.UUID
		disabledAt, enabledAt, updAt   *time.Time
		createdAt, updatedAt           time.Time
	)

	err := row.Scan(
		&id, &code, &amountOff, &percentOff, &status, &fromDate, &toDate,
		&enabled, &addedBy,
		&disabledBy, &disabledAt, &enabledBy, &enabledAt, &updBy, &updAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan coupon", err)
	}

	discount, err := coupon.NewDiscount(amountOff, percentOff)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid coupon discount in storage", err)
	}

	return coupon.Reconstruct(
		id, coupon.Code(code), discount, coupon.Status(status),
		fromDate, toDate, enabled, addedBy,
		auditStamp(disabledBy, disabledAt),
		auditStamp(enabledBy, enabledAt),
		auditStamp(updBy, updAt),
		createdAt, updatedAt,
	), nil
}

func auditStamp(by *uuid.UUID, at *time.Time) *coupon.AuditStamp {
	if by == nil || at == nil {
		return nil
	}
	return &coupon.AuditStamp{By: *by, At: *at}
}
