package domain

import "time"

type EventKind string

const (
	EventItemAdded   EventKind = "added"
	EventItemUpdated EventKind = "updated"
	EventItemDeleted EventKind = "deleted"
)

// Event describes a committed change to the ledger.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Actor      string    `json:"actor,omitempty"`
	Channel    string    `json:"channel,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
