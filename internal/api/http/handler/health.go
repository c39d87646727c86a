package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Healthy(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// GET /health
func (h *HealthHandler) Health(c fiber.Ctx) error {
	return ok(c, fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"dbState":   h.dbState(c.Context()),
	})
}

// Ready is a readiness probe for healthcheck.New.
func (h *HealthHandler) Ready(c fiber.Ctx) bool {
	return h.dbState(c.Context()) == "connected"
}

func (h *HealthHandler) dbState(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.db.Healthy(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
