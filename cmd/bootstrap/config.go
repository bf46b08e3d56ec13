package bootstrap

import (
	"go.uber.org/fx"

	"storefront-core/internal/pkg/config"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
