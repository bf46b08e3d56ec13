package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/jwt"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	orderHandler *api.OrderHandler,
	couponHandler *api.CouponHandler,
	cartHandler *api.CartHandler,
	webhookHandler *api.WebhookHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, orderHandler, couponHandler, cartHandler, webhookHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	orderHandler *api.OrderHandler,
	couponHandler *api.CouponHandler,
	cartHandler *api.CartHandler,
	webhookHandler *api.WebhookHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		// Provider callbacks authenticate via signature, not a bearer token.
		apiGroup.POST("/payments/webhook", webhookHandler.HandlePaymentEvent)

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			admin := authMiddleware.RequireRoleAtLeast(jwt.RoleAdmin)
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: orderHandler.PlaceOrder},
				{Method: http.MethodPost, Path: "/from-cart", Handler: orderHandler.PlaceOrderFromCart},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListOrders},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: orderHandler.CancelOrder},
				{Method: http.MethodPost, Path: "/:id/pay", Handler: orderHandler.PayOrder},
				{Method: http.MethodPost, Path: "/:id/deliver", Handler: orderHandler.DeliverOrder, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodPost, Path: "/:id/refund", Handler: orderHandler.RefundOrder, Mw: []gin.HandlerFunc{admin}},
			})
		}

		coupons := apiGroup.Group("/coupons")
		coupons.Use(authMiddleware.RequireAuth())
		{
			admin := authMiddleware.RequireRoleAtLeast(jwt.RoleAdmin)
			addRoutes(coupons, []route{
				{Method: http.MethodPost, Path: "/apply", Handler: couponHandler.ApplyCoupon},
				{Method: http.MethodPost, Path: "", Handler: couponHandler.AddCoupon, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodGet, Path: "/enabled", Handler: couponHandler.ListEnabledCoupons, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodGet, Path: "/disabled", Handler: couponHandler.ListDisabledCoupons, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodGet, Path: "/:id", Handler: couponHandler.GetCoupon, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodGet, Path: "/:id/assignments", Handler: couponHandler.ListCouponAssignments, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodPatch, Path: "/:id", Handler: couponHandler.UpdateCoupon, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodPost, Path: "/:id/enable", Handler: couponHandler.EnableCoupon, Mw: []gin.HandlerFunc{admin}},
				{Method: http.MethodPost, Path: "/:id/disable", Handler: couponHandler.DisableCoupon, Mw: []gin.HandlerFunc{admin}},
			})
		}

		carts := apiGroup.Group("/cart")
		carts.Use(authMiddleware.RequireAuth())
		{
			addRoutes(carts, []route{
				{Method: http.MethodGet, Path: "", Handler: cartHandler.GetCart},
				{Method: http.MethodPut, Path: "/items", Handler: cartHandler.PutItem},
				{Method: http.MethodDelete, Path: "/items/:productId", Handler: cartHandler.RemoveItem},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
