package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/domain/order"
	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/gateway"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

// errMissingIdentity means the auth middleware let a request through without
// populating the context, which is a wiring bug rather than a client error.
var errMissingIdentity = errors.New("user identity missing from context")

type OrderHandler struct {
	orderCommands commands.OrderCommands
	orderQueries  queries.OrderQueries
}

func NewOrderHandler(orderCommands commands.OrderCommands, orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderCommands: orderCommands,
		orderQueries:  orderQueries,
	}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.orderCommands.PlaceOrder(c.Request.Context(), req, userID, middleware.GetUserEmail(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPlaceOrderResult(result))
}

func (h *OrderHandler) PlaceOrderFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.PlaceOrderFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.orderCommands.PlaceOrderFromCart(c.Request.Context(), req, userID, middleware.GetUserEmail(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPlaceOrderResult(result))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID", nil)
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
			return
		}
		respondOrderError(c, err)
		return
	}
	if view.UserID != userID && !middleware.IsAdmin(c) {
		// Hide existence from non-owners; the recorded error keeps the
		// real cause for monitoring.
		httperr.AbortWithError(c, http.StatusNotFound, commands.ErrNotOrderOwner, "Order not found", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	items, err := h.orderQueries.ListByUser(c.Request.Context(), userID, 50)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	result := make([]*resdto.OrderListResponse, 0, len(items))
	for _, item := range items {
		result = append(result, resdto.FromOrderListItem(item))
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID", nil)
		return
	}

	if err := h.orderCommands.Cancel(c.Request.Context(), orderID, userID, middleware.IsAdmin(c)); err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Canceled"})
}

func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID", nil)
		return
	}

	if err := h.orderCommands.Deliver(c.Request.Context(), orderID, adminID); err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Delivered"})
}

func (h *OrderHandler) RefundOrder(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID", nil)
		return
	}

	if err := h.orderCommands.Refund(c.Request.Context(), orderID, adminID); err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Refunded"})
}

func (h *OrderHandler) PayOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID", nil)
		return
	}

	handle, err := h.orderCommands.Pay(c.Request.Context(), orderID, userID, middleware.GetUserEmail(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.PaymentResponse{SessionID: handle.SessionID, URL: handle.URL})
}

func respondOrderError(c *gin.Context, err error) {
	var gatewayErr *gateway.GatewayError

	switch {
	case errors.Is(err, commands.ErrOrderNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
	case errors.Is(err, commands.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
	case errors.Is(err, commands.ErrCartNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Cart not found", nil)
	case errors.Is(err, commands.ErrProductUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Product unavailable or insufficient stock", nil)
	case errors.Is(err, commands.ErrNotOrderOwner):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Order belongs to another user", nil)
	case errors.Is(err, commands.ErrPaymentNotRequired):
		httperr.AbortWithError(c, http.StatusConflict, err, "Order does not require online payment", nil)
	case errors.Is(err, commands.ErrPaymentNotConfirmable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Order is not awaiting payment", nil)
	case errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponDisabled),
		errors.Is(err, coupon.ErrCouponNotStarted),
		errors.Is(err, coupon.ErrNotAssigned),
		errors.Is(err, coupon.ErrUsageExceeded):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)
	case errors.Is(err, order.ErrCouponExceedsTotal):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Coupon amount exceeds order total", nil)
	case errors.Is(err, order.ErrCancelWindowExpired):
		httperr.AbortWithError(c, http.StatusConflict, err, "Cancellation window has expired", nil)
	case errors.Is(err, order.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Order status does not allow this operation", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	case errors.As(err, &gatewayErr):
		if gatewayErr.Retryable {
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment provider unavailable, retry later", nil)
		} else {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Payment provider rejected the request", nil)
		}
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
