package models

import "time"

// Favorite pairs a user with a place, denormalizing enough place metadata to
// render a list without a lookup. (user_id, place_id) is unique.
type Favorite struct {
	ID           int         `json:"id"`
	UserID       int         `json:"userId"`
	PlaceID      string      `json:"placeId"`
	PlaceName    string      `json:"placeName"`
	PlaceAddress string      `json:"placeAddress"`
	AreaCode     int         `json:"areaCode"`
	TypeID       int         `json:"typeId"`
	Coordinates  Coordinates `json:"coordinates"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type AddFavoriteRequest struct {
	PlaceID      string      `json:"placeId"`
	PlaceName    string      `json:"placeName"`
	PlaceAddress string      `json:"placeAddress"`
	AreaCode     int         `json:"areaCode"`
	TypeID       int         `json:"typeId"`
	Coordinates  Coordinates `json:"coordinates"`
}
