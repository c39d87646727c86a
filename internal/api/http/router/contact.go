package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/codecrest/codecrest_backend/internal/api/http/handler"
)

func (r *Router) registerContactRoutes(api fiber.Router, h *handler.ContactHandler, adminRequired fiber.Handler) {
	api.Post("/contact", h.Submit)
	api.Get("/contact", adminRequired, h.List)
	api.Delete("/contact/:id", adminRequired, h.Delete)
}
