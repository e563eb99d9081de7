package repository

import (
	"database/sql"

	"festivelo/pkg/models"
)

type FavoriteRepository interface {
	Create(f models.Favorite) (models.Favorite, error)
	ListByUser(userID int) ([]models.Favorite, error)
	Delete(userID int, placeID string) error
}

type favoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(f models.Favorite) (models.Favorite, error) {
	err := r.db.QueryRow(`
		INSERT INTO favorites (user_id, place_id, place_name, place_address, area_code, type_id, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		f.UserID, f.PlaceID, f.PlaceName, f.PlaceAddress, f.AreaCode, f.TypeID,
		f.Coordinates.Lat, f.Coordinates.Lng,
	).Scan(&f.ID, &f.CreatedAt)
	if isUniqueViolation(err) {
		return models.Favorite{}, ErrDuplicate
	}
	if err != nil {
		return models.Favorite{}, err
	}
	return f, nil
}

func (r *favoriteRepository) ListByUser(userID int) ([]models.Favorite, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, place_id, place_name, place_address, area_code, type_id, lat, lng, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.PlaceID, &f.PlaceName, &f.PlaceAddress,
			&f.AreaCode, &f.TypeID, &f.Coordinates.Lat, &f.Coordinates.Lng, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (r *favoriteRepository) Delete(userID int, placeID string) error {
	res, err := r.db.Exec(`DELETE FROM favorites WHERE user_id = $1 AND place_id = $2`, userID, placeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
