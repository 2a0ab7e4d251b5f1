package types

import "time"

// Place is a listing offered by a host user in a city.
type Place struct {
	// ID is the unique identifier of the place.
	ID string `json:"id" db:"id"`

	// Name is the title of the listing.
	Name string `json:"name" db:"name"`

	// Description is a free-form description of the listing.
	Description string `json:"description" db:"description"`

	// CityID references the city where the place is located.
	CityID string `json:"city_id" db:"city_id"`

	// HostID references the user who owns the listing. It is always the
	// identity that created the place.
	HostID string `json:"host_id" db:"host_id"`

	// PhotoKey is the object storage key of the listing photo, or empty
	// when no photo has been uploaded.
	PhotoKey string `json:"photo_key,omitempty" db:"photo_key"`

	// CreatedAt is the timestamp at which the place was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the place.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p Place) EntityID() string { return p.ID }

func (p Place) Timestamps() (time.Time, time.Time) { return p.CreatedAt, p.UpdatedAt }

// Amenity is a named feature a place may offer (e.g., "Wifi").
type Amenity struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (a Amenity) EntityID() string { return a.ID }

func (a Amenity) Timestamps() (time.Time, time.Time) { return a.CreatedAt, a.UpdatedAt }
