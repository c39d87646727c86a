package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/codecrest/codecrest_backend/internal/api/http/handler"
	"github.com/codecrest/codecrest_backend/internal/api/http/middleware"
	"github.com/codecrest/codecrest_backend/internal/service/auth"
	"github.com/codecrest/codecrest_backend/internal/service/contact"
	"github.com/codecrest/codecrest_backend/internal/service/contact/contacttest"
	"github.com/codecrest/codecrest_backend/pkg/logs"
	"github.com/codecrest/codecrest_backend/pkg/observability"
	"github.com/codecrest/codecrest_backend/pkg/observability/obstest"
	"github.com/codecrest/codecrest_backend/pkg/token"
)

const (
	adminEmail    = "admin@codecrest.dev"
	adminPassword = "hunter2"
)

type testEnv struct {
	app    *fiber.App
	store  *contacttest.MemStore
	tokens *token.Manager
	info   *bytes.Buffer
	errs   *bytes.Buffer
	meter  *obstest.Meter
}

func newEnv(t *testing.T, exposeErrors bool) *testEnv {
	t.Helper()

	tokens, err := token.New(token.Config{Secret: "test-secret", Issuer: "codecrest"})
	require.NoError(t, err)

	var info, errs bytes.Buffer
	audit := logs.NewAudit(&info, &errs)

	meter := obstest.NewMeter(t)
	store := contacttest.NewMemStore()
	contactSvc := contact.New(store, nil, contact.WithMeterProvider(meter))
	authSvc := auth.New(auth.NewStaticAdmin(adminEmail, adminPassword), tokens)

	contactH := handler.NewContactHandler(contactSvc, audit, exposeErrors)
	authH := handler.NewAuthHandler(authSvc, audit, meter)
	healthH := handler.NewHealthHandler(contactSvc)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(middleware.RequestID())
	app.Get("/health", healthH.Health)

	guard := middleware.AdminRequired(authSvc)
	api := app.Group("/api")
	api.Post("/contact", contactH.Submit)
	api.Get("/contact", guard, contactH.List)
	api.Delete("/contact/:id", guard, contactH.Delete)
	api.Post("/portal/login", authH.Login)

	return &testEnv{app: app, store: store, tokens: tokens, info: &info, errs: &errs, meter: meter}
}

func (e *testEnv) do(t *testing.T, method, path, body, bearer string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/portal/login",
		`{"email":"admin@codecrest.dev","password":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, status, string(body))

	var res struct {
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, adminEmail, res.Email)
	assert.True(t, res.IsAdmin)
	return res.Token
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

func TestSubmit_Created(t *testing.T) {
	env := newEnv(t, true)

	status, body := env.do(t, http.MethodPost, "/api/contact",
		`{"fullName":"Ada","projectTitle":"Engine","budget":"5k","_id":"x"}`, "")
	require.Equal(t, http.StatusCreated, status, string(body))

	got := decode(t, body)
	assert.Len(t, got["_id"], 24)
	assert.NotEqual(t, "x", got["_id"])
	assert.Equal(t, "Engine", got["projectTitle"])
	assert.Equal(t, "5k", got["budget"])
	assert.NotEmpty(t, got["createdAt"])

	assert.Contains(t, env.info.String(), `"action":"POST /contact"`)
	assert.Contains(t, env.info.String(), `"action":"Contact Saved"`)
	assert.Zero(t, env.errs.Len())
}

func TestSubmit_ValidationFailed(t *testing.T) {
	env := newEnv(t, true)

	for _, body := range []string{`{"fullName":"Ada"}`, `{"projectTitle":"   "}`, ""} {
		status, resp := env.do(t, http.MethodPost, "/api/contact", body, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, map[string]any{
			"message": "Validation Failed",
			"error":   "Project Title is required",
		}, decode(t, resp))
	}
	assert.Zero(t, env.store.Len())
	assert.Contains(t, env.errs.String(), `"context":"Validation"`)
}

func TestSubmit_MalformedBody(t *testing.T) {
	env := newEnv(t, true)

	for _, body := range []string{`[1,2]`, `{"projectTitle": {"a": 1}}`, `{"projectTitle":`} {
		status, resp := env.do(t, http.MethodPost, "/api/contact", body, "")
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "Invalid request body", decode(t, resp)["message"])
	}
}

func TestSubmit_ScalarFieldsAreCast(t *testing.T) {
	env := newEnv(t, true)

	tests := []struct {
		body  string
		field string
		want  string
	}{
		{`{"projectTitle": 7}`, "projectTitle", "7"},
		{`{"projectTitle":"Site","mobile":9876543210}`, "mobile", "9876543210"},
		{`{"projectTitle":"Site","fullName":true}`, "fullName", "true"},
	}
	for _, tt := range tests {
		status, resp := env.do(t, http.MethodPost, "/api/contact", tt.body, "")
		require.Equal(t, http.StatusCreated, status, string(resp))
		assert.Equal(t, tt.want, decode(t, resp)[tt.field])
	}
	assert.Equal(t, len(tests), env.store.Len())
	assert.EqualValues(t, len(tests), env.meter.Count(t, contact.MetricSubmissions,
		attribute.String("outcome", observability.OutcomeSaved)))
}

func TestSubmit_AuditKeepsRawInput(t *testing.T) {
	env := newEnv(t, true)

	status, resp := env.do(t, http.MethodPost, "/api/contact",
		`{"projectTitle":"Site","_id":"abc","createdAt":"2020-01-01"}`, "")
	require.Equal(t, http.StatusCreated, status, string(resp))

	var line struct {
		Action string         `json:"action"`
		Body   map[string]any `json:"body"`
	}
	first, _, _ := strings.Cut(env.info.String(), "\n")
	require.NoError(t, json.Unmarshal([]byte(first), &line), first)

	assert.Equal(t, "POST /contact", line.Action)
	assert.Equal(t, map[string]any{
		"projectTitle": "Site",
		"_id":          "abc",
		"createdAt":    "2020-01-01",
	}, line.Body)
}

func TestSubmit_StorageFailure(t *testing.T) {
	t.Run("exposed", func(t *testing.T) {
		env := newEnv(t, true)
		env.store.Break(errors.New("connection refused"))

		status, resp := env.do(t, http.MethodPost, "/api/contact", `{"projectTitle":"X"}`, "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, map[string]any{
			"message": "Failed to save contact",
			"error":   "connection refused",
		}, decode(t, resp))
		assert.Contains(t, env.errs.String(), `"context":"Contact POST Handler"`)
	})

	t.Run("hidden", func(t *testing.T) {
		env := newEnv(t, false)
		env.store.Break(errors.New("connection refused"))

		status, resp := env.do(t, http.MethodPost, "/api/contact", `{"projectTitle":"X"}`, "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, map[string]any{"message": "Failed to save contact"}, decode(t, resp))
	})
}

func TestLogin(t *testing.T) {
	env := newEnv(t, true)

	tok := env.login(t)
	claims, err := env.tokens.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	status, resp := env.do(t, http.MethodPost, "/api/portal/login",
		`{"email":"admin@codecrest.dev","password":"nope"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", decode(t, resp)["message"])

	status, _ = env.do(t, http.MethodPost, "/api/portal/login", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, status)

	outcome := func(v string) attribute.KeyValue { return attribute.String("outcome", v) }
	assert.EqualValues(t, 1, env.meter.Count(t, handler.MetricLogins, outcome(observability.OutcomeSuccess)))
	assert.EqualValues(t, 1, env.meter.Count(t, handler.MetricLogins, outcome(observability.OutcomeRejected)))
	assert.EqualValues(t, 1, env.meter.Count(t, handler.MetricLogins, outcome(observability.OutcomeInvalid)))
}

func TestLogin_ServerConfigurationError(t *testing.T) {
	tokens, err := token.New(token.Config{Secret: "s", Issuer: "codecrest"})
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/login", handler.NewAuthHandler(auth.New(auth.NewStaticAdmin("", ""), tokens), nil, nil).Login)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a","password":"b"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"message":"Server configuration error"}`, string(b))
}

func TestAdminFlow(t *testing.T) {
	env := newEnv(t, true)

	for _, title := range []string{"first", "second"} {
		status, _ := env.do(t, http.MethodPost, "/api/contact", `{"projectTitle":"`+title+`"}`, "")
		require.Equal(t, http.StatusCreated, status)
	}

	status, resp := env.do(t, http.MethodGet, "/api/contact", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", decode(t, resp)["message"])

	status, resp = env.do(t, http.MethodGet, "/api/contact", "", "garbage")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid token.", decode(t, resp)["message"])

	visitor, _, err := env.tokens.Issue("visitor@codecrest.dev", false)
	require.NoError(t, err)
	status, resp = env.do(t, http.MethodGet, "/api/contact", "", visitor)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied.", decode(t, resp)["message"])

	tok := env.login(t)
	status, resp = env.do(t, http.MethodGet, "/api/contact", "", tok)
	require.Equal(t, http.StatusOK, status)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp, &list))
	require.Len(t, list, 2)
	ids := []string{list[0]["_id"].(string), list[1]["_id"].(string)}

	status, resp = env.do(t, http.MethodDelete, "/api/contact/"+ids[0], "", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Message deleted successfully", decode(t, resp)["message"])

	status, resp = env.do(t, http.MethodDelete, "/api/contact/"+ids[0], "", tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Message not found", decode(t, resp)["message"])

	status, resp = env.do(t, http.MethodGet, "/api/contact", "", tok)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp, &list))
	assert.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0]["_id"])
}

func TestList_ExpiredAdminToken(t *testing.T) {
	env := newEnv(t, true)

	stale, err := token.New(token.Config{
		Secret: "test-secret",
		Issuer: "codecrest",
		Clock:  func() time.Time { return time.Now().Add(-48 * time.Hour) },
	})
	require.NoError(t, err)

	old, _, err := stale.Issue(adminEmail, true)
	require.NoError(t, err)

	status, resp := env.do(t, http.MethodGet, "/api/contact", "", old)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid token.", decode(t, resp)["message"])
}

func TestList_EmptyIsArray(t *testing.T) {
	env := newEnv(t, true)
	status, resp := env.do(t, http.MethodGet, "/api/contact", "", env.login(t))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(resp))
}

func TestList_StorageFailure(t *testing.T) {
	env := newEnv(t, true)
	tok := env.login(t)
	env.store.Break(errors.New("boom"))

	status, resp := env.do(t, http.MethodGet, "/api/contact", "", tok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", decode(t, resp)["message"])

	status, resp = env.do(t, http.MethodDelete, "/api/contact/000000000000000000000001", "", tok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to delete message", decode(t, resp)["message"])
}

func TestHealth(t *testing.T) {
	env := newEnv(t, true)

	status, resp := env.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, status)
	got := decode(t, resp)
	assert.Equal(t, "OK", got["status"])
	assert.Equal(t, "connected", got["dbState"])
	assert.NotEmpty(t, got["timestamp"])

	env.store.Break(errors.New("down"))
	_, resp = env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, "disconnected", decode(t, resp)["dbState"])
}
