package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/codecrest/codecrest_backend/internal/service/contact"
	"github.com/codecrest/codecrest_backend/pkg/logs"
	"github.com/codecrest/codecrest_backend/pkg/reqctx"
)

type ContactHandler struct {
	svc   contact.Service
	audit *logs.Audit

	// exposeStorageErrors echoes the storage error text on a failed save.
	exposeStorageErrors bool
}

func NewContactHandler(svc contact.Service, audit *logs.Audit, exposeStorageErrors bool) *ContactHandler {
	if audit == nil {
		audit = logs.NopAudit()
	}
	return &ContactHandler{svc: svc, audit: audit, exposeStorageErrors: exposeStorageErrors}
}

// POST /api/contact
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	ctx := c.Context()

	var msg contact.Message
	raw := json.RawMessage("{}")
	// An empty body is an empty submission, which then fails validation.
	if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
		if err := c.Bind().JSON(&msg); err != nil {
			h.audit.Error(ctx, "Contact POST Handler", err)
			return badRequest(c, "Invalid request body")
		}
		raw = json.RawMessage(bytes.Clone(body))
	}

	// The audit keeps the input as sent, server-owned keys included.
	h.audit.Info(ctx, "POST /contact", "body", raw)

	saved, err := h.svc.Submit(ctx, &msg)
	switch {
	case errors.Is(err, contact.ErrProjectTitleRequired):
		h.audit.Error(ctx, "Validation", err)
		return messageWithError(c, fiber.StatusBadRequest, "Validation Failed", "Project Title is required")
	case err != nil:
		h.audit.Error(ctx, "Contact POST Handler", err)
		if !h.exposeStorageErrors {
			return internalError(c, "Failed to save contact")
		}
		return messageWithError(c, fiber.StatusInternalServerError, "Failed to save contact", storageDetail(err))
	}

	h.audit.Info(ctx, "Contact Saved", "id", saved.ID)
	return created(c, saved)
}

// GET /api/contact
func (h *ContactHandler) List(c fiber.Ctx) error {
	ctx := c.Context()
	if !reqctx.IsAdmin(ctx) {
		return forbidden(c)
	}

	msgs, err := h.svc.List(ctx)
	if err != nil {
		h.audit.Error(ctx, "GET /contact", err)
		return internalError(c, "Internal server error")
	}
	return ok(c, msgs)
}

// DELETE /api/contact/:id
func (h *ContactHandler) Delete(c fiber.Ctx) error {
	ctx := c.Context()
	if !reqctx.IsAdmin(ctx) {
		return forbidden(c)
	}

	id := c.Params("id")
	err := h.svc.Delete(ctx, id)
	switch {
	case errors.Is(err, contact.ErrNotFound):
		return notFound(c, "Message not found")
	case err != nil:
		h.audit.Error(ctx, "DELETE /contact", err, "id", id)
		return internalError(c, "Failed to delete message")
	}

	h.audit.Info(ctx, "DELETE /contact", "id", id)
	return message(c, fiber.StatusOK, "Message deleted successfully")
}

// storageDetail strips the service's own wrapping so the caller sees the
// driver's message.
func storageDetail(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
