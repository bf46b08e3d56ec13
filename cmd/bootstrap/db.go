package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"storefront-core/internal/infra/db"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/infra/uow"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
		NewDBTX,
		fx.Annotate(
			uow.NewPgxUnitOfWork,
			fx.As(new(commands.UnitOfWork)),
		),
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
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

	return pool, nil
}

func NewDBTX(pool *pgxpool.Pool) repository.DBTX {
	return pool
}
