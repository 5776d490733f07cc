package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/delivery/http/router"
)

// NewServer binds the HTTP port during fx start. A port already in use fails
// startup.
func NewServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	r *router.Router,
	logger *zap.Logger,
) error {
	app := r.Setup()
	addr := fmt.Sprintf(":%d", cfg.App.Port)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var listenCfg net.ListenConfig
			ln, err := listenCfg.Listen(ctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			logger.Info("Starting HTTP server",
				zap.String("address", ln.Addr().String()),
				zap.String("env", cfg.App.Env),
				zap.String("anvil_environment", cfg.Anvil.Environment),
			)

			go func() {
				if err := app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server")
			return app.ShutdownWithContext(ctx)
		},
	})

	return nil
}

var Module = fx.Module("server",
	fx.Invoke(NewServer),
)
