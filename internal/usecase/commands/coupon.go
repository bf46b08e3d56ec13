package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"storefront-core/internal/domain/coupon"
	reqdto "storefront-core/internal/handler/dto/request"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/queries"
)

var (
	ErrDuplicateCouponCode = errs.New("coupon code already exists")
	ErrAssignmentExists    = errs.New("coupon already assigned to user")
)

// ApplyCouponResult is the dry-run answer: what the coupon would take off,
// without consuming a use.
type ApplyCouponResult struct {
	CouponID       uuid.UUID `json:"coupon_id"`
	Code           string    `json:"code"`
	AmountOffCents *int64    `json:"amount_off_cents,omitempty"`
	PercentOff     *float64  `json:"percent_off,omitempty"`
	RemainingUses  int32     `json:"remaining_uses"`
}

type CouponCommands interface {
	AddCoupon(ctx context.Context, req reqdto.AddCouponRequest, adminID uuid.UUID) (*queries.CouponView, error)
	UpdateCoupon(ctx context.Context, couponID uuid.UUID, req reqdto.UpdateCouponRequest, adminID uuid.UUID) (*queries.CouponView, error)
	EnableCoupon(ctx context.Context, couponID, adminID uuid.UUID) error
	DisableCoupon(ctx context.Context, couponID, adminID uuid.UUID) error
	ApplyCoupon(ctx context.Context, code string, userID uuid.UUID) (*ApplyCouponResult, error)
	ExpireCoupons(ctx context.Context) (int64, error)
}

type couponUseCaseImpl struct {
	couponRepo    CouponRepository
	couponQueries queries.CouponQueries
	uow           UnitOfWork
	db            repository.DBTX
	clock         clock.Clock
}

func NewCouponUseCase(
	couponRepo CouponRepository,
	couponQueries queries.CouponQueries,
	uow UnitOfWork,
	db repository.DBTX,
	clock clock.Clock,
) CouponCommands {
	return &couponUseCaseImpl{
		couponRepo:    couponRepo,
		couponQueries: couponQueries,
		uow:           uow,
		db:            db,
		clock:         clock,
	}
}

func (u *couponUseCaseImpl) AddCoupon(
	ctx context.Context,
	req reqdto.AddCouponRequest,
	adminID uuid.UUID,
) (*queries.CouponView, error) {
	newCoupon, err := coupon.NewCoupon(uuid.New(), req.Code, req.AmountOffCents, req.PercentOff, req.FromDate, req.ToDate, adminID)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	assignments := make([]*coupon.Assignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		assignment, err := coupon.NewAssignment(newCoupon.ID(), a.UserID, a.MaxUsage)
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		assignments = append(assignments, assignment)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		if err := u.couponRepo.Create(ctx, db, newCoupon); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateCouponCode
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := u.couponRepo.CreateAssignments(ctx, db, assignments); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.couponQueries.GetByID(ctx, newCoupon.ID())
}

func (u *couponUseCaseImpl) UpdateCoupon(
	ctx context.Context,
	couponID uuid.UUID,
	req reqdto.UpdateCouponRequest,
	adminID uuid.UUID,
) (*queries.CouponView, error) {
	newAssignments := make([]*coupon.Assignment, 0, len(req.NewAssignments))
	for _, a := range req.NewAssignments {
		assignment, err := coupon.NewAssignment(couponID, a.UserID, a.MaxUsage)
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		newAssignments = append(newAssignments, assignment)
	}

	err := u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		existing, err := u.couponRepo.FindByID(ctx, db, couponID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCouponNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		updated, err := u.applyPatch(existing, req, adminID)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if err := u.couponRepo.Update(ctx, db, updated); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateCouponCode
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// Updates only ever widen the audience: new users are appended and
		// existing assignments keep their counters.
		if err := u.couponRepo.CreateAssignments(ctx, db, newAssignments); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrAssignmentExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.couponQueries.GetByID(ctx, couponID)
}

func (u *couponUseCaseImpl) EnableCoupon(ctx context.Context, couponID, adminID uuid.UUID) error {
	return u.setEnabled(ctx, couponID, adminID, true)
}

func (u *couponUseCaseImpl) DisableCoupon(ctx context.Context, couponID, adminID uuid.UUID) error {
	return u.setEnabled(ctx, couponID, adminID, false)
}

// ApplyCoupon is a dry-run validation for the current user: it answers
// whether the coupon would be accepted at checkout and what it is worth.
func (u *couponUseCaseImpl) ApplyCoupon(ctx context.Context, code string, userID uuid.UUID) (*ApplyCouponResult, error) {
	normalized, err := coupon.NewCode(code)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	coup, err := u.couponRepo.FindByCode(ctx, u.db, normalized.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	assignment, err := u.couponRepo.FindAssignment(ctx, u.db, coup.ID(), userID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := coup.ValidateFor(u.clock.Now(), assignment); err != nil {
		return nil, err
	}

	result := &ApplyCouponResult{
		CouponID:      coup.ID(),
		Code:          coup.Code().String(),
		RemainingUses: assignment.Remaining(),
	}
	if coup.Discount().IsFixed() {
		v := coup.Discount().AmountOffCents()
		result.AmountOffCents = &v
	} else {
		v := coup.Discount().PercentOff()
		result.PercentOff = &v
	}
	return result, nil
}

// ExpireCoupons is the periodic sweep behind the scheduler: it flips every
// still-valid coupon whose window has closed.
func (u *couponUseCaseImpl) ExpireCoupons(ctx context.Context) (int64, error) {
	expired, err := u.couponRepo.ExpireBefore(ctx, u.db, u.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if expired > 0 {
		slog.Info("expired coupons swept", "count", expired)
	}
	return expired, nil
}

func (u *couponUseCaseImpl) setEnabled(ctx context.Context, couponID, adminID uuid.UUID, enabled bool) error {
	return u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		coup, err := u.couponRepo.FindByID(ctx, db, couponID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCouponNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := u.clock.Now()
		if enabled {
			err = coup.Enable(adminID, now)
		} else {
			err = coup.Disable(adminID, now)
		}
		if err != nil {
			return err
		}

		if err := u.couponRepo.SetEnabled(ctx, db, coup); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (u *couponUseCaseImpl) applyPatch(
	existing *coupon.Coupon,
	req reqdto.UpdateCouponRequest,
	adminID uuid.UUID,
) (*coupon.Coupon, error) {
	code := existing.Code()
	if req.Code != nil {
		newCode, err := coupon.NewCode(*req.Code)
		if err != nil {
			return nil, err
		}
		code = newCode
	}

	amountOff := req.AmountOffCents
	percentOff := req.PercentOff
	if amountOff == nil && percentOff == nil {
		if existing.Discount().IsFixed() {
			v := existing.Discount().AmountOffCents()
			amountOff = &v
		} else {
			v := existing.Discount().PercentOff()
			percentOff = &v
		}
	}
	discount, err := coupon.NewDiscount(amountOff, percentOff)
	if err != nil {
		return nil, err
	}

	fromDate := existing.FromDate()
	if req.FromDate != nil {
		fromDate = *req.FromDate
	}
	toDate := existing.ToDate()
	if req.ToDate != nil {
		toDate = *req.ToDate
	}
	if !toDate.After(fromDate) {
		return nil, coupon.ErrInvalidWindow
	}

	now := u.clock.Now()
	return coupon.Reconstruct(
		existing.ID(), code, discount, existing.Status(),
		fromDate, toDate, existing.Enabled(), existing.AddedBy(),
		existing.DisabledStamp(), existing.EnabledStamp(),
		&coupon.AuditStamp{By: adminID, At: now},
		existing.CreatedAt(), now,
	), nil
}
