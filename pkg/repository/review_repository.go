package repository

import (
	"database/sql"

	"festivelo/pkg/models"
)

type ReviewRepository interface {
	Create(rv models.Review) (models.Review, error)
	ExistsForUserAndPlace(userID int, placeID string) (bool, error)
	ListByPlace(placeID string) ([]models.Review, error)
	ListByUser(userID int) ([]models.Review, error)
	Update(id int, rating int, comment string) (models.Review, error)
	Delete(id int) error
	DeleteByUser(userID int) error
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(rv models.Review) (models.Review, error) {
	err := r.db.QueryRow(`
		INSERT INTO reviews (user_id, place_id, place_name, trip_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		rv.UserID, rv.PlaceID, rv.PlaceName, rv.TripID, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
	if isUniqueViolation(err) {
		return models.Review{}, ErrDuplicate
	}
	if err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

func (r *reviewRepository) ExistsForUserAndPlace(userID int, placeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND place_id = $2)`,
		userID, placeID,
	).Scan(&exists)
	return exists, err
}

const reviewColumns = `r.id, r.user_id, r.place_id, r.place_name, r.trip_id, r.rating, r.comment, r.created_at, u.name`

func (r *reviewRepository) ListByPlace(placeID string) ([]models.Review, error) {
	rows, err := r.db.Query(`
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.place_id = $1
		ORDER BY r.created_at DESC`, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *reviewRepository) ListByUser(userID int) ([]models.Review, error) {
	rows, err := r.db.Query(`
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *reviewRepository) Update(id int, rating int, comment string) (models.Review, error) {
	var rv models.Review
	err := r.db.QueryRow(`
		UPDATE reviews SET rating = $2, comment = $3
		WHERE id = $1
		RETURNING id, user_id, place_id, place_name, trip_id, rating, comment, created_at`,
		id, rating, comment,
	).Scan(&rv.ID, &rv.UserID, &rv.PlaceID, &rv.PlaceName, &rv.TripID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Review{}, ErrNotFound
	}
	if err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

func (r *reviewRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reviewRepository) DeleteByUser(userID int) error {
	_, err := r.db.Exec(`DELETE FROM reviews WHERE user_id = $1`, userID)
	return err
}

func scanReviews(rows *sql.Rows) ([]models.Review, error) {
	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.PlaceID, &rv.PlaceName, &rv.TripID,
			&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UserName); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
