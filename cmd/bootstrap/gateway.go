package bootstrap

import (
	"go.uber.org/fx"

	"storefront-core/internal/infra/gateway"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			NewStripeGateway,
			fx.As(new(commands.PaymentGateway)),
			fx.As(new(commands.WebhookVerifier)),
		),
	),
)

func NewStripeGateway(cfg config.Config) *gateway.StripeGateway {
	return gateway.NewStripeGateway(cfg.Stripe)
}
