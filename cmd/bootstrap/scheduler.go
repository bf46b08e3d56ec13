package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(StartCouponSweep),
)

// StartCouponSweep runs the coupon expiry sweep on a ticker for the lifetime
// of the application.
func StartCouponSweep(lc fx.Lifecycle, cfg config.Config, couponCommands commands.CouponCommands) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Order.CouponSweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if _, err := couponCommands.ExpireCoupons(ctx); err != nil {
							slog.Error("coupon expiry sweep failed", "error", err)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
