package components

import (
	"go.uber.org/fx"

	"storefront-core/internal/handler"
	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewCouponHandler,
		api.NewCartHandler,
		api.NewWebhookHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
