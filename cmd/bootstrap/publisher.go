package bootstrap

import (
	"context"

	"go.uber.org/fx"

	"storefront-core/internal/infra/publisher"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
)

var PublisherModule = fx.Module("publisher",
	fx.Provide(
		fx.Annotate(
			NewKafkaPublisher,
			fx.As(new(commands.EventPublisher)),
		),
	),
)

func NewKafkaPublisher(lc fx.Lifecycle, cfg config.Config) (*publisher.KafkaPublisher, error) {
	pub, cleanup, err := publisher.NewKafkaPublisher(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pub, nil
}
