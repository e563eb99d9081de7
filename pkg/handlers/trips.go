package handlers

import (
	"festivelo/pkg/models"
	"festivelo/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type TripHandler struct {
	trips services.TripService
}

func NewTrips(trips services.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// List returns every trip the requester owns or collaborates on.
func (h *TripHandler) List(c *fiber.Ctx) error {
	trips, err := h.trips.List(requesterID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trips)
}

func (h *TripHandler) Get(c *fiber.Ctx) error {
	t, err := h.trips.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

func (h *TripHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTripRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	t, err := h.trips.Create(requesterID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(t)
}

func (h *TripHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateTripRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	t, err := h.trips.Update(requesterID(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

func (h *TripHandler) Delete(c *fiber.Ctx) error {
	if err := h.trips.Delete(requesterID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Trip deleted successfully"})
}

// SetDayPlan replaces one day's (places, route) pair and returns the updated
// day plan.
func (h *TripHandler) SetDayPlan(c *fiber.Ctx) error {
	var req models.SetDayPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	plan, err := h.trips.SetDayPlan(requesterID(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(plan)
}

// AddCollaborator adds a user to the trip by email and returns the trip with
// owner and collaborators resolved.
func (h *TripHandler) AddCollaborator(c *fiber.Ctx) error {
	var req models.AddCollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if req.CollaboratorEmail == "" {
		return badRequest(c, "collaboratorEmail is required")
	}
	t, err := h.trips.AddCollaborator(requesterID(c), c.Params("id"), req.CollaboratorEmail)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}
