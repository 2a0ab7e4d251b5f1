package types

import "time"

// EntityAction names the mutation an EntityEvent reports.
type EntityAction string

const (
	ActionCreated  EntityAction = "created"
	ActionUpdated  EntityAction = "updated"
	ActionDeleted  EntityAction = "deleted"
	ActionPromoted EntityAction = "promoted"
)

// EntityEvent is published after a mutation has been committed.
type EntityEvent struct {
	// Kind is the entity kind (e.g., "place").
	Kind string `json:"kind"`

	// Action is the mutation that was applied.
	Action EntityAction `json:"action"`

	// EntityID is the identifier of the mutated record.
	EntityID string `json:"entity_id"`

	// ActorID is the user that performed the mutation, empty for
	// anonymous registration.
	ActorID string `json:"actor_id,omitempty"`

	// OccurredAt is the commit time of the mutation.
	OccurredAt time.Time `json:"occurred_at"`
}
