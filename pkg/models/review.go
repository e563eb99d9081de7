package models

import "time"

// Review is one user's rating of one place; one review per (user, place).
type Review struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	PlaceName string    `json:"place_name"`
	TripID    *string   `json:"trip_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`

	// UserName is resolved on read paths that render the author.
	UserName string `json:"user,omitempty"`
}

type CreateReviewRequest struct {
	PlaceID   string  `json:"place_id"`
	PlaceName string  `json:"place_name"`
	TripID    *string `json:"trip_id"`
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
