package readstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/queries"
)

type CouponReadStore struct {
	db *pgxpool.Pool
}

func NewCouponReadStore(db *pgxpool.Pool) *CouponReadStore {
	return &CouponReadStore{db: db}
}

const couponViewColumns = `
	id, code, amount_off_cents, percent_off, status, from_date, to_date,
	is_enabled, added_by, disabled_at, enabled_at, created_at, updated_at
`

func (r *CouponReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.CouponView, error) {
	query := `SELECT ` + couponViewColumns + ` FROM coupons WHERE id = $1`

	v, err := scanCouponView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by ID", err)
	}
	return v, nil
}

func (r *CouponReadStore) FindByEnabled(ctx context.Context, enabled bool) ([]*queries.CouponView, error) {
	query := `SELECT ` + couponViewColumns + ` FROM coupons WHERE is_enabled = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, enabled)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupon views", err)
	}
	defer rows.Close()

	var result []*queries.CouponView
	for rows.Next() {
		v, err := scanCouponView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon view", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupon views", err)
	}
	return result, nil
}

func (r *CouponReadStore) FindAssignments(ctx context.Context, couponID uuid.UUID) ([]*queries.CouponAssignmentView, error) {
	const query = `
		SELECT user_id, max_usage, usage_count
		FROM coupon_assignments
		WHERE coupon_id = $1
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query, couponID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupon assignments", err)
	}
	defer rows.Close()

	var result []*queries.CouponAssignmentView
	for rows.Next() {
		var v queries.CouponAssignmentView
		if err := rows.Scan(&v.UserID, &v.MaxUsage, &v.UsageCount); err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon assignment view", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupon assignments", err)
	}
	return result, nil
}

func scanCouponView(row pgx.Row) (*queries.CouponView, error) {
	var v queries.CouponView
	err := row.Scan(
		&v.ID, &v.Code, &v.AmountOffCents, &v.PercentOff, &v.Status,
		&v.FromDate, &v.ToDate, &v.IsEnabled, &v.AddedBy,
		&v.DisabledAt, &v.EnabledAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
