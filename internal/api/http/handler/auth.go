package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/metric"

	"github.com/codecrest/codecrest_backend/internal/service/auth"
	"github.com/codecrest/codecrest_backend/pkg/logs"
	"github.com/codecrest/codecrest_backend/pkg/observability"
)

// MetricLogins counts admin login attempts by outcome.
const MetricLogins = "codecrest_admin_logins_total"

type AuthHandler struct {
	svc    auth.Service
	audit  *logs.Audit
	logins observability.Counter
}

// NewAuthHandler records login attempts on mp, or on the otel global when
// mp is nil.
func NewAuthHandler(svc auth.Service, audit *logs.Audit, mp metric.MeterProvider) *AuthHandler {
	if audit == nil {
		audit = logs.NopAudit()
	}
	return &AuthHandler{
		svc:    svc,
		audit:  audit,
		logins: observability.NewCounter(mp, MetricLogins, "Admin login attempts"),
	}
}

// POST /api/portal/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	ctx := c.Context()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		h.logins.Inc(ctx, observability.OutcomeInvalid)
		return badRequest(c, "Invalid request body")
	}

	res, err := h.svc.Login(ctx, auth.LoginRequest{Email: body.Email, Password: body.Password})
	switch {
	case errors.Is(err, auth.ErrAdminNotConfigured):
		h.logins.Inc(ctx, observability.OutcomeMisconfigured)
		h.audit.Error(ctx, "Login Handler", err)
		return internalError(c, "Server configuration error")
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.logins.Inc(ctx, observability.OutcomeRejected)
		return badRequest(c, "Invalid credentials")
	case err != nil:
		h.logins.Inc(ctx, observability.OutcomeFailed)
		h.audit.Error(ctx, "Login Handler", err)
		return internalError(c, "Internal server error")
	}

	h.logins.Inc(ctx, observability.OutcomeSuccess)
	h.audit.Info(ctx, "Admin Login", "email", res.Email)
	return ok(c, fiber.Map{
		"email":   res.Email,
		"isAdmin": res.IsAdmin,
		"token":   res.Token,
	})
}
