package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/api/http/handler"
	"github.com/codecrest/codecrest_backend/internal/api/http/middleware"
	"github.com/codecrest/codecrest_backend/internal/api/http/router"
	"github.com/codecrest/codecrest_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.OTel != nil)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			slog.Info("HTTP server listening", "addr", addr, "env", p.Cfg.Server.Environment)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the fiber app with global middleware but no routes.
func NewApp(cfg *config.Config, telemetry bool) *fiber.App {
	fcfg := fiber.Config{
		AppName:      "codecrest",
		ErrorHandler: handler.ErrorHandler,
	}
	if cfg.Server.TimeoutSeconds > 0 {
		timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		fcfg.ReadTimeout = timeout
		fcfg.WriteTimeout = timeout
	}
	app := fiber.New(fcfg)

	obs := cfg.Observability
	if telemetry && (obs.Tracing.Enabled || obs.Metrics.Enabled) {
		app.Use(observability.Middleware(observability.MiddlewareConfig{
			ServiceName: obs.ServiceName,
			Tracing:     obs.Tracing.Enabled,
			Metrics:     obs.Metrics.Enabled,
		}))
	}

	configureGlobalMiddleware(app, cfg)
	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.IsProduction() {
		app.Use(helmet.New())
	}

	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(corsConfig(cfg.Server.CORS)))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:requestid}] ${method} ${url} ${status} ${latency}\n",
	}))
}

func corsConfig(c config.CORSConfig) cors.Config {
	out := cors.Config{
		AllowOrigins:     c.AllowOrigins,
		AllowMethods:     c.AllowMethods,
		AllowHeaders:     c.AllowHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAgeSeconds,
	}
	// Credentials cannot be combined with a wildcard origin.
	if out.AllowCredentials {
		for _, o := range out.AllowOrigins {
			if o == "*" {
				out.AllowCredentials = false
				break
			}
		}
	}
	return out
}
