package types

import "time"

const (
	// MinRating is the lowest accepted review rating.
	MinRating = 1
	// MaxRating is the highest accepted review rating.
	MaxRating = 5
)

// Review is a user's rating and comment on a place.
// A user reviews a given place at most once and never reviews a place
// they host.
type Review struct {
	// ID is the unique identifier of the review.
	ID string `json:"id" db:"id"`

	// PlaceID references the reviewed place.
	PlaceID string `json:"place_id" db:"place_id"`

	// UserID references the author of the review.
	UserID string `json:"user_id" db:"user_id"`

	// Rating is an integer score between MinRating and MaxRating.
	Rating int `json:"rating" db:"rating"`

	// Comment is the free-form review text.
	Comment string `json:"comment" db:"comment"`

	// CreatedAt is the timestamp at which the review was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the review.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (r Review) EntityID() string { return r.ID }

func (r Review) Timestamps() (time.Time, time.Time) { return r.CreatedAt, r.UpdatedAt }

// ValidRating reports whether rating lies within the accepted range.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
