package services

import (
	"errors"

	"festivelo/pkg/models"
	"festivelo/pkg/repository"
)

type ReviewService interface {
	Create(userID int, req models.CreateReviewRequest) (models.Review, error)
	ListByPlace(placeID string) ([]models.Review, error)
	ListByUser(userID int) ([]models.Review, error)
	Update(id int, req models.UpdateReviewRequest) (models.Review, error)
	Delete(id int) error
}

type reviewService struct {
	reviews repository.ReviewRepository
}

func NewReviewService(reviews repository.ReviewRepository) ReviewService {
	return &reviewService{reviews: reviews}
}

func (s *reviewService) Create(userID int, req models.CreateReviewRequest) (models.Review, error) {
	if req.PlaceID == "" || req.PlaceName == "" || req.Comment == "" {
		return models.Review{}, invalid("invalid_input", "place_id, place_name and comment are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return models.Review{}, invalid("invalid_input", "rating must be between 1 and 5")
	}

	exists, err := s.reviews.ExistsForUserAndPlace(userID, req.PlaceID)
	if err != nil {
		return models.Review{}, err
	}
	if exists {
		return models.Review{}, conflict("duplicate_review", "You have already reviewed this place")
	}

	rv, err := s.reviews.Create(models.Review{
		UserID:    userID,
		PlaceID:   req.PlaceID,
		PlaceName: req.PlaceName,
		TripID:    req.TripID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	// The unique index is the backstop for a racing duplicate.
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Review{}, conflict("duplicate_review", "You have already reviewed this place")
	}
	if err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

func (s *reviewService) ListByPlace(placeID string) ([]models.Review, error) {
	return s.reviews.ListByPlace(placeID)
}

func (s *reviewService) ListByUser(userID int) ([]models.Review, error) {
	return s.reviews.ListByUser(userID)
}

func (s *reviewService) Update(id int, req models.UpdateReviewRequest) (models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return models.Review{}, invalid("invalid_input", "rating must be between 1 and 5")
	}
	if req.Comment == "" {
		return models.Review{}, invalid("invalid_input", "comment is required")
	}

	rv, err := s.reviews.Update(id, req.Rating, req.Comment)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Review{}, notFound("review_not_found", "Review not found")
	}
	if err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

func (s *reviewService) Delete(id int) error {
	err := s.reviews.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("review_not_found", "Review not found")
	}
	return err
}
