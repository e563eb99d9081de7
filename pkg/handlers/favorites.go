package handlers

import (
	"festivelo/pkg/models"
	"festivelo/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type FavoriteHandler struct {
	favorites services.FavoriteService
}

func NewFavorites(favorites services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	var req models.AddFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	f, err := h.favorites.Add(requesterID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": f})
}

func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	favorites, err := h.favorites.ListByUser(requesterID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": favorites})
}

func (h *FavoriteHandler) Delete(c *fiber.Ctx) error {
	if err := h.favorites.Delete(requesterID(c), c.Params("placeId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Favorite removed"})
}
