package types

import "time"

// Country is a sovereign state identified by its ISO 3166-1 alpha-2 code.
type Country struct {
	// ID is the unique identifier of the country.
	ID string `json:"id" db:"id"`

	// Name is the English short name of the country.
	Name string `json:"name" db:"name"`

	// Code is the upper-case ISO 3166-1 alpha-2 code (e.g., "UY").
	// It is unique across all countries.
	Code string `json:"code" db:"code"`

	// CreatedAt is the timestamp at which the country was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the country.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c Country) EntityID() string { return c.ID }

func (c Country) Timestamps() (time.Time, time.Time) { return c.CreatedAt, c.UpdatedAt }

// City is a city that belongs to exactly one country.
type City struct {
	// ID is the unique identifier of the city.
	ID string `json:"id" db:"id"`

	// Name is the display name of the city.
	Name string `json:"name" db:"name"`

	// CountryID references the country the city belongs to.
	CountryID string `json:"country_id" db:"country_id"`

	// CreatedAt is the timestamp at which the city was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the city.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c City) EntityID() string { return c.ID }

func (c City) Timestamps() (time.Time, time.Time) { return c.CreatedAt, c.UpdatedAt }
