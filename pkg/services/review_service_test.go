package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/models"
	"festivelo/pkg/repository"
	"festivelo/pkg/services"
)

type reviewRepoMock struct {
	createFn func(rv models.Review) (models.Review, error)
	existsFn func(userID int, placeID string) (bool, error)
	updateFn func(id int, rating int, comment string) (models.Review, error)
	deleteFn func(id int) error
}

func (m *reviewRepoMock) Create(rv models.Review) (models.Review, error) { return m.createFn(rv) }
func (m *reviewRepoMock) ExistsForUserAndPlace(userID int, placeID string) (bool, error) {
	return m.existsFn(userID, placeID)
}
func (m *reviewRepoMock) ListByPlace(placeID string) ([]models.Review, error) { return nil, nil }
func (m *reviewRepoMock) ListByUser(userID int) ([]models.Review, error)      { return nil, nil }
func (m *reviewRepoMock) Update(id int, rating int, comment string) (models.Review, error) {
	return m.updateFn(id, rating, comment)
}
func (m *reviewRepoMock) Delete(id int) error           { return m.deleteFn(id) }
func (m *reviewRepoMock) DeleteByUser(userID int) error { return nil }

func validReview() models.CreateReviewRequest {
	return models.CreateReviewRequest{
		PlaceID:   "p1",
		PlaceName: "Harbor",
		Rating:    4,
		Comment:   "Worth the walk",
	}
}

func TestCreateReview(t *testing.T) {
	t.Run("stores the review", func(t *testing.T) {
		reviews := &reviewRepoMock{
			existsFn: func(userID int, placeID string) (bool, error) { return false, nil },
			createFn: func(rv models.Review) (models.Review, error) {
				assert.Equal(t, 5, rv.UserID)
				assert.Equal(t, "p1", rv.PlaceID)
				rv.ID = 1
				return rv, nil
			},
		}
		svc := services.NewReviewService(reviews)

		rv, err := svc.Create(5, validReview())
		require.NoError(t, err)
		assert.Equal(t, 1, rv.ID)
	})

	t.Run("second review for the same place", func(t *testing.T) {
		reviews := &reviewRepoMock{
			existsFn: func(userID int, placeID string) (bool, error) { return true, nil },
		}
		svc := services.NewReviewService(reviews)

		_, err := svc.Create(5, validReview())
		assert.Equal(t, "duplicate_review", reasonOf(t, err))
		assert.True(t, services.IsKind(err, services.KindConflict))
	})

	t.Run("racing duplicate caught by the unique index", func(t *testing.T) {
		reviews := &reviewRepoMock{
			existsFn: func(userID int, placeID string) (bool, error) { return false, nil },
			createFn: func(rv models.Review) (models.Review, error) {
				return models.Review{}, repository.ErrDuplicate
			},
		}
		svc := services.NewReviewService(reviews)

		_, err := svc.Create(5, validReview())
		assert.Equal(t, "duplicate_review", reasonOf(t, err))
	})

	t.Run("rating bounds", func(t *testing.T) {
		svc := services.NewReviewService(&reviewRepoMock{})
		for _, rating := range []int{0, 6, -1} {
			req := validReview()
			req.Rating = rating
			_, err := svc.Create(5, req)
			assert.Equal(t, "invalid_input", reasonOf(t, err), "rating %d", rating)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := services.NewReviewService(&reviewRepoMock{})
		req := validReview()
		req.Comment = ""
		_, err := svc.Create(5, req)
		assert.Equal(t, "invalid_input", reasonOf(t, err))
	})
}

func TestUpdateReview(t *testing.T) {
	t.Run("unknown review", func(t *testing.T) {
		reviews := &reviewRepoMock{
			updateFn: func(id int, rating int, comment string) (models.Review, error) {
				return models.Review{}, repository.ErrNotFound
			},
		}
		svc := services.NewReviewService(reviews)

		_, err := svc.Update(42, models.UpdateReviewRequest{Rating: 3, Comment: "meh"})
		assert.Equal(t, "review_not_found", reasonOf(t, err))
	})

	t.Run("rating bounds", func(t *testing.T) {
		svc := services.NewReviewService(&reviewRepoMock{})
		_, err := svc.Update(42, models.UpdateReviewRequest{Rating: 9, Comment: "x"})
		assert.Equal(t, "invalid_input", reasonOf(t, err))
	})
}

func TestDeleteReview(t *testing.T) {
	reviews := &reviewRepoMock{
		deleteFn: func(id int) error { return repository.ErrNotFound },
	}
	svc := services.NewReviewService(reviews)

	err := svc.Delete(42)
	assert.Equal(t, "review_not_found", reasonOf(t, err))
}
