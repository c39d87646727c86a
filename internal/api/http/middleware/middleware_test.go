package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrest/codecrest_backend/pkg/reqctx"
	"github.com/codecrest/codecrest_backend/pkg/token"
)

type stubVerifier struct {
	claims *token.Claims
	err    error
}

func (s stubVerifier) VerifyToken(context.Context, string) (*token.Claims, error) {
	return s.claims, s.err
}

func guardedApp(v TokenVerifier) *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/secret", AdminRequired(v), func(c fiber.Ctx) error {
		if !reqctx.IsAdmin(c.Context()) {
			return c.SendStatus(fiber.StatusTeapot)
		}
		if reqctx.ClaimsFromContext(c.Context()).GetEmail() != "a@b.c" {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(reqctx.RequestIDFromContext(c.Context()))
	})
	return app
}

func TestAdminRequired(t *testing.T) {
	valid := &token.Claims{Email: "a@b.c", Admin: true, ExpiresAt: time.Now().Add(time.Hour)}
	visitor := &token.Claims{Email: "v@b.c", Admin: false, ExpiresAt: time.Now().Add(time.Hour)}

	tests := []struct {
		name     string
		header   string
		verifier TokenVerifier
		status   int
		body     string
	}{
		{"no header", "", stubVerifier{claims: valid}, 401, MsgNoToken},
		{"bearer without token", "Bearer ", stubVerifier{claims: valid}, 401, MsgNoToken},
		{"wrong scheme", "Basic abc", stubVerifier{claims: valid}, 401, MsgNoToken},
		{"bad token", "Bearer junk", stubVerifier{err: errors.New("bad")}, 403, MsgInvalidToken},
		{"not admin", "Bearer ok", stubVerifier{claims: visitor}, 403, MsgAccessDenied},
		{"admin", "Bearer ok", stubVerifier{claims: valid}, 200, "req-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/secret", nil)
			req.Header.Set(HeaderRequestID, "req-42")
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := guardedApp(tt.verifier).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.body)
		})
	}
}

func TestRequestID_Generated(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		rid, _ := RequestIDFromFiber(c)
		return c.SendString(rid)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	rid := resp.Header.Get(HeaderRequestID)
	assert.Len(t, rid, 36)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, rid, string(body))
}
