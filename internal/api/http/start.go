package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/api/http/router"
	"github.com/codecrest/codecrest_backend/internal/app"
)

// Start builds the full fx graph and blocks until SIGINT/SIGTERM.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(Options(cfg, timeout)...).Run()
}

// Options is the fx graph behind Start.
func Options(cfg *config.Config, timeout time.Duration) []fx.Option {
	return []fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// Invoke *fiber.App because that's what NewServer returns;
		// this forces the OnStart hook to be registered.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	}
}
