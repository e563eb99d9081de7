package handlers

import (
	"errors"
	"log"

	"festivelo/pkg/services"

	"github.com/gofiber/fiber/v2"
)

// fail renders a service error as a structured payload with a stable reason
// string. Anything that is not a *services.Error is a store-level fault and
// comes back as a 500 with the detail kept out of the response.
func fail(c *fiber.Ctx, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		return c.Status(statusFor(se.Kind)).JSON(fiber.Map{
			"error":   se.Reason,
			"message": se.Message,
		})
	}
	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{
		"error":   "store_unavailable",
		"message": "Internal server error",
	})
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return 404
	case services.KindConflict, services.KindInvalid:
		return 400
	case services.KindForbidden:
		return 403
	default:
		return 500
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(400).JSON(fiber.Map{"error": "invalid_input", "message": message})
}

func requesterID(c *fiber.Ctx) int {
	id, _ := c.Locals("user_id").(int)
	return id
}
