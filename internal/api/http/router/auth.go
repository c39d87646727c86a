package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/codecrest/codecrest_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler) {
	api.Post("/portal/login", h.Login)
}
