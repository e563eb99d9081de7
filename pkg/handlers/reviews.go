package handlers

import (
	"strconv"

	"festivelo/pkg/models"
	"festivelo/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviews services.ReviewService
}

func NewReviews(reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req models.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	rv, err := h.reviews.Create(requesterID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Review created", "review": rv})
}

func (h *ReviewHandler) ListByPlace(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListByPlace(c.Params("place_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("user_id"))
	if err != nil {
		return badRequest(c, "user_id must be numeric")
	}
	reviews, err := h.reviews.ListByUser(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "id must be numeric")
	}
	var req models.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	rv, err := h.reviews.Update(id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review updated", "review": rv})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "id must be numeric")
	}
	if err := h.reviews.Delete(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}
