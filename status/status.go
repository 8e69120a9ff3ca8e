package status

import (
	"github.com/mensylisir/taskcores/outcome"
)

// Store is the external task-status collaborator. It keeps one Outcome
// snapshot per invocation id: the dispatching step records the initial
// in-progress snapshot, the batch accumulator replaces it with each
// combined running total, and callers read it to observe progress.
type Store interface {
	// GetLatest returns the most recent snapshot for the invocation, or
	// found=false when the invocation is unknown.
	GetLatest(invocationID string) (out *outcome.Outcome, found bool, err error)

	// Get returns the snapshot stored under exactly this invocation id.
	Get(invocationID string) (out *outcome.Outcome, found bool, err error)

	// Save persists the snapshot for the invocation, replacing any
	// previous one.
	Save(invocationID string, out *outcome.Outcome) error
}

// ItemStatus is the external per-item status collaborator. Transition is a
// fire-and-forget push: implementations report failures through their own
// logging, never to the caller.
type ItemStatus interface {
	Transition(itemID, newStatus string)
}
