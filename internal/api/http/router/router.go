package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/api/http/handler"
	"github.com/codecrest/codecrest_backend/internal/api/http/middleware"
	"github.com/codecrest/codecrest_backend/internal/service/auth"
	"github.com/codecrest/codecrest_backend/internal/service/contact"
	"github.com/codecrest/codecrest_backend/pkg/logs"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Audit      *logs.Audit
	AuthSvc    auth.Service
	ContactSvc contact.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	healthH := handler.NewHealthHandler(r.p.ContactSvc)

	// 1. Health & Metrics
	r.registerSystemRoutes(app, healthH)

	// 2. Middlewares
	adminRequired := middleware.AdminRequired(r.p.AuthSvc)

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, r.p.Audit, nil)
	contactH := handler.NewContactHandler(r.p.ContactSvc, r.p.Audit, r.p.Cfg.Errors.ExposeStorageErrors)

	api := app.Group("/api")

	r.registerAuthRoutes(api, authH)
	r.registerContactRoutes(api, contactH, adminRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App, h *handler.HealthHandler) {
	app.Get("/health", h.Health)
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: h.Ready,
	}))

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
