package services

import (
	"errors"

	"festivelo/pkg/models"
	"festivelo/pkg/repository"
)

type FavoriteService interface {
	Add(userID int, req models.AddFavoriteRequest) (models.Favorite, error)
	ListByUser(userID int) ([]models.Favorite, error)
	Delete(userID int, placeID string) error
}

type favoriteService struct {
	favorites repository.FavoriteRepository
}

func NewFavoriteService(favorites repository.FavoriteRepository) FavoriteService {
	return &favoriteService{favorites: favorites}
}

func (s *favoriteService) Add(userID int, req models.AddFavoriteRequest) (models.Favorite, error) {
	if req.PlaceID == "" || req.PlaceName == "" || req.PlaceAddress == "" {
		return models.Favorite{}, invalid("invalid_input", "placeId, placeName and placeAddress are required")
	}

	f, err := s.favorites.Create(models.Favorite{
		UserID:       userID,
		PlaceID:      req.PlaceID,
		PlaceName:    req.PlaceName,
		PlaceAddress: req.PlaceAddress,
		AreaCode:     req.AreaCode,
		TypeID:       req.TypeID,
		Coordinates:  req.Coordinates,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Favorite{}, conflict("duplicate_favorite", "Place is already in favorites")
	}
	if err != nil {
		return models.Favorite{}, err
	}
	return f, nil
}

func (s *favoriteService) ListByUser(userID int) ([]models.Favorite, error) {
	return s.favorites.ListByUser(userID)
}

func (s *favoriteService) Delete(userID int, placeID string) error {
	err := s.favorites.Delete(userID, placeID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("favorite_not_found", "Favorite not found")
	}
	return err
}
