package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/models"
	"festivelo/pkg/repository"
	"festivelo/pkg/services"
)

type favoriteRepoMock struct {
	createFn func(f models.Favorite) (models.Favorite, error)
	listFn   func(userID int) ([]models.Favorite, error)
	deleteFn func(userID int, placeID string) error
}

func (m *favoriteRepoMock) Create(f models.Favorite) (models.Favorite, error) {
	return m.createFn(f)
}
func (m *favoriteRepoMock) ListByUser(userID int) ([]models.Favorite, error) {
	return m.listFn(userID)
}
func (m *favoriteRepoMock) Delete(userID int, placeID string) error {
	return m.deleteFn(userID, placeID)
}

func TestAddFavorite(t *testing.T) {
	req := models.AddFavoriteRequest{
		PlaceID:      "126508",
		PlaceName:    "Beach",
		PlaceAddress: "Shore Rd 1",
	}

	t.Run("stores the favorite", func(t *testing.T) {
		favorites := &favoriteRepoMock{
			createFn: func(f models.Favorite) (models.Favorite, error) {
				assert.Equal(t, 4, f.UserID)
				assert.Equal(t, "126508", f.PlaceID)
				f.ID = 10
				return f, nil
			},
		}
		svc := services.NewFavoriteService(favorites)

		f, err := svc.Add(4, req)
		require.NoError(t, err)
		assert.Equal(t, 10, f.ID)
	})

	t.Run("same place twice", func(t *testing.T) {
		favorites := &favoriteRepoMock{
			createFn: func(f models.Favorite) (models.Favorite, error) {
				return models.Favorite{}, repository.ErrDuplicate
			},
		}
		svc := services.NewFavoriteService(favorites)

		_, err := svc.Add(4, req)
		assert.Equal(t, "duplicate_favorite", reasonOf(t, err))
		assert.True(t, services.IsKind(err, services.KindConflict))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := services.NewFavoriteService(&favoriteRepoMock{})
		_, err := svc.Add(4, models.AddFavoriteRequest{PlaceID: "126508"})
		assert.Equal(t, "invalid_input", reasonOf(t, err))
	})
}

func TestDeleteFavorite(t *testing.T) {
	favorites := &favoriteRepoMock{
		deleteFn: func(userID int, placeID string) error { return repository.ErrNotFound },
	}
	svc := services.NewFavoriteService(favorites)

	err := svc.Delete(4, "126508")
	assert.Equal(t, "favorite_not_found", reasonOf(t, err))
}
