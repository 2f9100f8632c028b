package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Every response body is the same envelope; errors add a per-field detail
// list for validation failures.
type envelope struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Data      any          `json:"data"`
	Errors    []FieldError `json:"errors,omitempty"`
	Timestamp string       `json:"timestamp"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondValidation(c *fiber.Ctx, fieldErrors ...FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(envelope{
		Success:   false,
		Message:   "Validation failed",
		Errors:    fieldErrors,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondNotFound(c *fiber.Ctx, resource string) error {
	return respondError(c, fiber.StatusNotFound, resource+" not found")
}

func respondForbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Forbidden"
	}
	return respondError(c, fiber.StatusForbidden, message)
}

func respondUnauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return respondError(c, fiber.StatusUnauthorized, message)
}

func respondInternalError(c *fiber.Ctx) error {
	return respondError(c, fiber.StatusInternalServerError, "Internal server error")
}
