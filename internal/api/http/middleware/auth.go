package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/codecrest/codecrest_backend/pkg/reqctx"
	"github.com/codecrest/codecrest_backend/pkg/token"
)

const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid token."
	MsgAccessDenied = "Access denied."
)

// TokenVerifier opens a raw bearer token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*token.Claims, error)
}

// AdminRequired validates a Bearer token and insists on the admin flag.
// On success the claims are stored on the request context.
func AdminRequired(v TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": MsgNoToken})
		}

		claims, err := v.VerifyToken(c.Context(), raw)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": MsgInvalidToken})
		}
		if !claims.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": MsgAccessDenied})
		}

		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
