package commands

import (
	"context"

	"github.com/google/uuid"

	"storefront-core/internal/domain/cart"
	reqdto "storefront-core/internal/handler/dto/request"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/queries"
)

var (
	ErrCartNotFound    = errs.New("cart not found")
	ErrProductNotFound = errs.New("product not found")
)

type CartCommands interface {
	PutItem(ctx context.Context, req reqdto.PutCartItemRequest, userID uuid.UUID) (*queries.CartView, error)
	RemoveItem(ctx context.Context, productID, userID uuid.UUID) (*queries.CartView, error)
}

type cartUseCaseImpl struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	cartQueries queries.CartQueries
	uow         UnitOfWork
}

func NewCartUseCase(
	cartRepo CartRepository,
	productRepo ProductRepository,
	cartQueries queries.CartQueries,
	uow UnitOfWork,
) CartCommands {
	return &cartUseCaseImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartQueries: cartQueries,
		uow:         uow,
	}
}

// PutItem adds a product to the user's cart, creating the cart on first use.
// Stock is only read here; nothing is reserved until checkout.
func (u *cartUseCaseImpl) PutItem(
	ctx context.Context,
	req reqdto.PutCartItemRequest,
	userID uuid.UUID,
) (*queries.CartView, error) {
	err := u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		product, err := u.productRepo.FindByID(ctx, db, req.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrProductNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if product.Stock < req.Quantity {
			return ErrProductUnavailable
		}

		userCart, err := u.cartRepo.FindByUser(ctx, db, userID)
		if err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			userCart = cart.NewCart(uuid.New(), userID)
		}

		if err := userCart.PutProduct(product.ID, product.Title, product.AppliedPriceCents, req.Quantity); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := u.cartRepo.Save(ctx, db, userCart); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.cartQueries.GetByUser(ctx, userID)
}

// RemoveItem drops one product line; removing the last line deletes the cart
// and returns nil.
func (u *cartUseCaseImpl) RemoveItem(ctx context.Context, productID, userID uuid.UUID) (*queries.CartView, error) {
	var emptied bool
	err := u.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		userCart, err := u.cartRepo.FindByUser(ctx, db, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCartNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := userCart.RemoveProduct(productID); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if userCart.IsEmpty() {
			emptied = true
			if err := u.cartRepo.Delete(ctx, db, userID); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			return nil
		}
		if err := u.cartRepo.Save(ctx, db, userCart); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if emptied {
		return nil, nil
	}

	return u.cartQueries.GetByUser(ctx, userID)
}
