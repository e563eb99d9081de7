package services

import (
	"errors"
	"fmt"
	"time"

	"festivelo/pkg/cache"
	"festivelo/pkg/models"
	"festivelo/pkg/repository"

	"github.com/google/uuid"
)

type TripService interface {
	List(userID int) ([]models.Trip, error)
	Get(id string) (models.Trip, error)
	Create(userID int, req models.CreateTripRequest) (models.Trip, error)
	Update(userID int, tripID string, req models.UpdateTripRequest) (models.Trip, error)
	Delete(userID int, tripID string) error
	SetDayPlan(userID int, tripID string, req models.SetDayPlanRequest) (models.DayPlan, error)
	AddCollaborator(userID int, tripID, collaboratorEmail string) (models.Trip, error)
}

type tripService struct {
	trips repository.TripRepository
	users repository.UserRepository
	redis *cache.Redis
}

func NewTripService(trips repository.TripRepository, users repository.UserRepository, redis *cache.Redis) TripService {
	return &tripService{trips: trips, users: users, redis: redis}
}

func (s *tripService) List(userID int) ([]models.Trip, error) {
	cacheKey := fmt.Sprintf("trips:user:%d", userID)
	var cached []models.Trip
	if s.cacheGet(cacheKey, &cached) {
		return cached, nil
	}

	trips, err := s.trips.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(cacheKey, trips, 15*time.Second)
	return trips, nil
}

func (s *tripService) Get(id string) (models.Trip, error) {
	cacheKey := "trips:get:" + id
	var cached models.Trip
	if s.cacheGet(cacheKey, &cached) {
		return cached, nil
	}

	t, err := s.trips.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Trip{}, notFound("trip_not_found", "Trip not found")
	}
	if err != nil {
		return models.Trip{}, err
	}
	s.cacheSet(cacheKey, t, 30*time.Second)
	return t, nil
}

func (s *tripService) Create(userID int, req models.CreateTripRequest) (models.Trip, error) {
	if req.Name == "" || req.Location == "" {
		return models.Trip{}, invalid("invalid_input", "name and location are required")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return models.Trip{}, invalid("invalid_input", "start_date and end_date are required")
	}
	if models.DayCount(req.StartDate, req.EndDate) == 0 {
		return models.Trip{}, invalid("invalid_input", "end_date must not precede start_date")
	}

	seen := map[int]bool{}
	for _, id := range req.Collaborators {
		if id == userID {
			return models.Trip{}, conflict("duplicate_owner", "The trip owner cannot be added as a collaborator")
		}
		if seen[id] {
			return models.Trip{}, conflict("duplicate_collaborator", "Collaborator listed twice")
		}
		seen[id] = true
		if _, err := s.users.GetByID(id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.Trip{}, notFound("user_not_found", "Collaborator user not found")
			}
			return models.Trip{}, err
		}
	}

	t := models.Trip{
		ID:        uuid.NewString(),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Location:  req.Location,
	}
	// The plan map is complete before the insert; a trip is never readable
	// with a partially populated map.
	t.EnsureDayPlans()

	created, err := s.trips.Create(t, userID, req.Collaborators)
	if err != nil {
		return models.Trip{}, err
	}
	s.invalidate(created.ID)
	return created, nil
}

func (s *tripService) Update(userID int, tripID string, req models.UpdateTripRequest) (models.Trip, error) {
	t, err := s.loadForMutation(userID, tripID)
	if err != nil {
		return models.Trip{}, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.StartDate != nil {
		t.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		t.EndDate = *req.EndDate
	}
	if req.Location != nil {
		t.Location = *req.Location
	}
	if t.Name == "" || t.Location == "" {
		return models.Trip{}, invalid("invalid_input", "name and location must not be empty")
	}
	if models.DayCount(t.StartDate, t.EndDate) == 0 {
		return models.Trip{}, invalid("invalid_input", "end_date must not precede start_date")
	}

	fields := repository.TripFields{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Location:  req.Location,
	}
	updated, err := s.trips.Update(tripID, fields, t.MissingDayPlans())
	if errors.Is(err, repository.ErrNotFound) {
		return models.Trip{}, notFound("trip_not_found", "Trip not found")
	}
	if err != nil {
		return models.Trip{}, err
	}
	s.invalidate(tripID)
	return updated, nil
}

func (s *tripService) Delete(userID int, tripID string) error {
	if _, err := s.loadForMutation(userID, tripID); err != nil {
		return err
	}
	err := s.trips.Delete(tripID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("trip_not_found", "Trip not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(tripID)
	return nil
}

// SetDayPlan atomically replaces one day's (places, route) pair. The route
// must be a permutation of the place ids, the day key must already exist, and
// the request's version must match the stored plan's version.
func (s *tripService) SetDayPlan(userID int, tripID string, req models.SetDayPlanRequest) (models.DayPlan, error) {
	t, err := s.loadForMutation(userID, tripID)
	if err != nil {
		return models.DayPlan{}, err
	}

	if req.DayKey == "" {
		return models.DayPlan{}, invalid("invalid_input", "dayKey is required")
	}
	current, ok := t.Plans[req.DayKey]
	if !ok {
		return models.DayPlan{}, notFound("day_not_found", fmt.Sprintf("Day %s not found in trip plans", req.DayKey))
	}
	if req.Version != current.Version {
		return models.DayPlan{}, conflict("stale_day_plan", "Day plan was modified by someone else; re-fetch and retry")
	}

	plan := models.DayPlan{Places: req.Places, Route: req.Route, Version: req.Version + 1}
	if plan.Places == nil {
		plan.Places = []models.Place{}
	}
	if plan.Route == nil {
		plan.Route = []models.PlaceID{}
	}
	if err := plan.ValidateRoute(); err != nil {
		return models.DayPlan{}, invalid("invalid_route", err.Error())
	}

	updated, err := s.trips.SetDayPlan(tripID, req.DayKey, plan, req.Version)
	if errors.Is(err, repository.ErrNotUpdated) {
		// The guarded update matched nothing: either the trip vanished or a
		// concurrent writer bumped the version between our read and the write.
		if _, getErr := s.trips.GetByID(tripID); errors.Is(getErr, repository.ErrNotFound) {
			return models.DayPlan{}, notFound("trip_not_found", "Trip not found")
		}
		return models.DayPlan{}, conflict("stale_day_plan", "Day plan was modified by someone else; re-fetch and retry")
	}
	if err != nil {
		return models.DayPlan{}, err
	}
	s.invalidate(tripID)
	return updated.Plans[req.DayKey], nil
}

func (s *tripService) AddCollaborator(userID int, tripID, collaboratorEmail string) (models.Trip, error) {
	t, err := s.loadForMutation(userID, tripID)
	if err != nil {
		return models.Trip{}, err
	}

	collaborator, err := s.users.GetByEmail(collaboratorEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Trip{}, notFound("user_not_found", "No user with that email")
	}
	if err != nil {
		return models.Trip{}, err
	}

	if t.CreateBy.ID == collaborator.ID {
		return models.Trip{}, conflict("duplicate_owner", "The trip owner cannot be added as a collaborator")
	}
	for _, c := range t.Collaborators {
		if c.ID == collaborator.ID {
			return models.Trip{}, conflict("duplicate_collaborator", "User is already a collaborator on this trip")
		}
	}

	updated, err := s.trips.AddCollaborator(tripID, collaborator.ID)
	if errors.Is(err, repository.ErrNotUpdated) {
		// Lost a race with an identical add.
		return models.Trip{}, conflict("duplicate_collaborator", "User is already a collaborator on this trip")
	}
	if err != nil {
		return models.Trip{}, err
	}
	s.invalidate(tripID)
	return updated, nil
}

// loadForMutation reads the trip and enforces the mutation authorization
// rule: the requester must be the owner or a collaborator.
func (s *tripService) loadForMutation(userID int, tripID string) (models.Trip, error) {
	t, err := s.trips.GetByID(tripID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Trip{}, notFound("trip_not_found", "Trip not found")
	}
	if err != nil {
		return models.Trip{}, err
	}
	if !canMutate(t, userID) {
		return models.Trip{}, forbidden("Only the owner or a collaborator may modify this trip")
	}
	return t, nil
}

func canMutate(t models.Trip, userID int) bool {
	if t.CreateBy.ID == userID {
		return true
	}
	for _, c := range t.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

func (s *tripService) cacheGet(key string, dest interface{}) bool {
	return s.redis != nil && s.redis.Get(key, dest)
}

func (s *tripService) cacheSet(key string, value interface{}, ttl time.Duration) {
	if s.redis != nil {
		s.redis.Set(key, value, ttl)
	}
}

func (s *tripService) invalidate(tripID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del("trips:get:" + tripID)
	s.redis.DelPattern("trips:user:*")
}
