package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
)

// Every non-data response is a {"message": ...} object, optionally with
// an "error" detail.

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func messageWithError(c fiber.Ctx, status int, msg, detail string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg, "error": detail})
}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(data)
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusBadRequest, msg)
}

func forbidden(c fiber.Ctx) error {
	return message(c, fiber.StatusForbidden, "Access denied.")
}

func notFound(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusNotFound, msg)
}

func internalError(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusInternalServerError, msg)
}

// ErrorHandler renders errors that escape a handler (fiber errors, panics
// turned into errors by the recover middleware) in the same envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return message(c, code, msg)
}
