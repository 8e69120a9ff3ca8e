package outcome

import (
	"fmt"
	"sync"
)

// Status describes the result of running a step, a supplier, or a whole task.
type Status int

const (
	StatusUnknown Status = iota // zero value, treated as absent when merging
	StatusSuccess
	StatusInProgress
	StatusPartialSuccess
	StatusValidationFailed
	StatusFailed
)

// Priority returns the numeric weight used to pick the most significant
// status when merging. Higher wins; StatusUnknown never wins.
func (s Status) Priority() int {
	switch s {
	case StatusSuccess:
		return 10
	case StatusInProgress:
		return 20
	case StatusPartialSuccess:
		return 30
	case StatusValidationFailed:
		return 40
	case StatusFailed:
		return 50
	default:
		return -1
	}
}

// String returns a string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusPartialSuccess:
		return "PARTIAL_SUCCESS"
	case StatusValidationFailed:
		return "VALIDATION_FAILED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN_STATUS_%d", int(s))
	}
}

// ParseStatus maps a status name produced by Status.String back to its
// Status value. Unrecognized names map to StatusUnknown.
func ParseStatus(name string) Status {
	switch name {
	case "SUCCESS":
		return StatusSuccess
	case "IN_PROGRESS":
		return StatusInProgress
	case "PARTIAL_SUCCESS":
		return StatusPartialSuccess
	case "VALIDATION_FAILED":
		return StatusValidationFailed
	case "FAILED":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// Outcome holds the result of an execution unit: a status, a human-readable
// message, at most one captured cause, and a string metadata map.
//
// An Outcome is immutable once constructed except for its metadata map,
// which only grows via AddMetadata. The metadata map is safe for concurrent
// writers, since an Outcome may be populated by steps running on different
// goroutines before a single goroutine merges it.
type Outcome struct {
	status  Status
	message string
	cause   error

	metaMu sync.RWMutex
	meta   map[string]string
}

// New creates an Outcome with the given status and message.
func New(status Status, message string) *Outcome {
	return &Outcome{
		status:  status,
		message: message,
		meta:    make(map[string]string),
	}
}

// NewSuccess creates a successful Outcome.
func NewSuccess(message string) *Outcome {
	return New(StatusSuccess, message)
}

// NewInProgress creates an in-progress Outcome, used by dispatching steps
// that return before their asynchronous results have arrived.
func NewInProgress(message string) *Outcome {
	return New(StatusInProgress, message)
}

// NewValidationFailed creates an Outcome for a precondition rule failure.
func NewValidationFailed(message string) *Outcome {
	return New(StatusValidationFailed, message)
}

// NewFailure creates a failed Outcome carrying the given cause.
func NewFailure(message string, cause error) *Outcome {
	o := New(StatusFailed, message)
	o.cause = cause
	return o
}

// NewWithCause creates an Outcome with an explicit status and cause.
func NewWithCause(status Status, message string, cause error) *Outcome {
	o := New(status, message)
	o.cause = cause
	return o
}

// Status returns the outcome's status.
func (o *Outcome) Status() Status {
	return o.status
}

// Message returns the outcome's human-readable message, possibly empty.
func (o *Outcome) Message() string {
	return o.message
}

// Cause returns the captured error, or nil. At most one cause is retained
// per Outcome; Merge keeps the last non-nil cause in input order.
func (o *Outcome) Cause() error {
	return o.cause
}

// AddMetadata records a key/value pair. Later writers for the same key
// overwrite earlier ones; entries are never removed.
func (o *Outcome) AddMetadata(key, value string) *Outcome {
	o.metaMu.Lock()
	o.meta[key] = value
	o.metaMu.Unlock()
	return o
}

// MetadataValue returns the value stored under key, and whether it exists.
func (o *Outcome) MetadataValue(key string) (string, bool) {
	o.metaMu.RLock()
	defer o.metaMu.RUnlock()
	v, ok := o.meta[key]
	return v, ok
}

// Metadata returns a copy of the metadata map.
func (o *Outcome) Metadata() map[string]string {
	o.metaMu.RLock()
	defer o.metaMu.RUnlock()
	m := make(map[string]string, len(o.meta))
	for k, v := range o.meta {
		m[k] = v
	}
	return m
}
