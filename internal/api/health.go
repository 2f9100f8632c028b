package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) HealthDB(c *fiber.Ctx) error {
	if err := handler.repos.Users.Ping(); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"status": "error", "database": "disconnected"})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "connected"})
}
