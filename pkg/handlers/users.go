package handlers

import (
	"strconv"

	"festivelo/pkg/models"
	"festivelo/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users services.UserService
}

func NewUsers(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) ChangeName(c *fiber.Ctx) error {
	var req models.ChangeNameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	u, err := h.users.ChangeName(req.Email, req.NewName)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Name changed", "user": u})
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := h.users.ChangePassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}

// Delete removes an account and its owned data. Only the account holder may
// delete it.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return badRequest(c, "userId must be numeric")
	}
	if userID != requesterID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden", "message": "You may only delete your own account"})
	}
	if err := h.users.Delete(userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
