package types

import "time"

// Identifiable is implemented by every persisted entity.
type Identifiable interface {
	// EntityID returns the opaque identifier of the record.
	EntityID() string
}

// Timestamped is implemented by every entity whose audit timestamps are
// managed by the store.
type Timestamped interface {
	// Timestamps returns the creation and last-update times of the record.
	Timestamps() (createdAt, updatedAt time.Time)
}
