package types

import "time"

// User is a registered account. Any user may host places and write
// reviews; IsAdmin lifts the ownership checks.
type User struct {
	ID string `json:"id" db:"id"`

	// Email is the login name. Unique, compared case-sensitively.
	Email string `json:"email" db:"email"`

	// PasswordHash is the bcrypt digest of the password and never leaves
	// the server.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsAdmin is set only by another admin or by bootstrap seeding.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (u User) EntityID() string { return u.ID }

func (u User) Timestamps() (time.Time, time.Time) { return u.CreatedAt, u.UpdatedAt }
