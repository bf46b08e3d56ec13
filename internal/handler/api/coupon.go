package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-core/internal/domain/coupon"
	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type CouponHandler struct {
	couponCommands commands.CouponCommands
	couponQueries  queries.CouponQueries
}

func NewCouponHandler(couponCommands commands.CouponCommands, couponQueries queries.CouponQueries) *CouponHandler {
	return &CouponHandler{
		couponCommands: couponCommands,
		couponQueries:  couponQueries,
	}
}

func (h *CouponHandler) AddCoupon(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.AddCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.couponCommands.AddCoupon(c.Request.Context(), req, adminID)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCouponView(view))
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon ID", nil)
		return
	}

	var req reqdto.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.couponCommands.UpdateCoupon(c.Request.Context(), couponID, req, adminID)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponView(view))
}

func (h *CouponHandler) EnableCoupon(c *gin.Context) {
	h.setEnabled(c, true)
}

func (h *CouponHandler) DisableCoupon(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *CouponHandler) setEnabled(c *gin.Context, enabled bool) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon ID", nil)
		return
	}

	if enabled {
		err = h.couponCommands.EnableCoupon(c.Request.Context(), couponID, adminID)
	} else {
		err = h.couponCommands.DisableCoupon(c.Request.Context(), couponID, adminID)
	}
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// ApplyCoupon is the customer-facing dry run: it validates the coupon for the
// caller without consuming a use.
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.couponCommands.ApplyCoupon(c.Request.Context(), req.Code, userID)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CouponHandler) GetCoupon(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon ID", nil)
		return
	}

	view, err := h.couponQueries.GetByID(c.Request.Context(), couponID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
			return
		}
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponView(view))
}

func (h *CouponHandler) ListEnabledCoupons(c *gin.Context) {
	views, err := h.couponQueries.ListEnabled(c.Request.Context())
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponViews(views))
}

func (h *CouponHandler) ListDisabledCoupons(c *gin.Context) {
	views, err := h.couponQueries.ListDisabled(c.Request.Context())
	if err != nil {
		respondCouponError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponViews(views))
}

func (h *CouponHandler) ListCouponAssignments(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon ID", nil)
		return
	}

	views, err := h.couponQueries.ListAssignments(c.Request.Context(), couponID)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	result := make([]*resdto.CouponAssignmentResponse, 0, len(views))
	for _, v := range views {
		result = append(result, resdto.FromCouponAssignmentView(v))
	}
	c.JSON(http.StatusOK, result)
}

func respondCouponError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
	case errors.Is(err, commands.ErrDuplicateCouponCode):
		httperr.AbortWithError(c, http.StatusConflict, err, "Coupon code already exists", nil)
	case errors.Is(err, commands.ErrAssignmentExists):
		httperr.AbortWithError(c, http.StatusConflict, err, "Coupon already assigned to user", nil)
	case errors.Is(err, coupon.ErrAlreadyEnabled),
		errors.Is(err, coupon.ErrAlreadyDisabled):
		httperr.AbortWithError(c, http.StatusConflict, err, err.Error(), nil)
	case errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponDisabled),
		errors.Is(err, coupon.ErrCouponNotStarted),
		errors.Is(err, coupon.ErrNotAssigned),
		errors.Is(err, coupon.ErrUsageExceeded):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
