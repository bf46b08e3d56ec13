package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-core/internal/domain/cart"
	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type CartHandler struct {
	cartCommands commands.CartCommands
	cartQueries  queries.CartQueries
}

func NewCartHandler(cartCommands commands.CartCommands, cartQueries queries.CartQueries) *CartHandler {
	return &CartHandler{
		cartCommands: cartCommands,
		cartQueries:  cartQueries,
	}
}

func (h *CartHandler) PutItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.PutCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.cartCommands.PutItem(c.Request.Context(), req, userID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product ID", nil)
		return
	}

	view, err := h.cartCommands.RemoveItem(c.Request.Context(), productID, userID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	if view == nil {
		// Last line removed: the cart itself is gone.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	view, err := h.cartQueries.GetByUser(c.Request.Context(), userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Cart not found", nil)
			return
		}
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCartNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Cart not found", nil)
	case errors.Is(err, commands.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
	case errors.Is(err, commands.ErrProductUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Product unavailable or insufficient stock", nil)
	case errors.Is(err, cart.ErrProductNotInCart):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found in cart", nil)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
