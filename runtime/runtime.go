package runtime

import (
	"sync"

	"github.com/google/uuid"
)

// Runtime is the work-unit-context handed to every rule and step of one
// task invocation. It carries the invocation identity and free-form string
// parameters; per-invocation mutable state does not belong here.
type Runtime interface {
	// JobID returns the invocation identifier. It correlates the initial
	// dispatch with later asynchronous batch callbacks.
	JobID() string

	// CorrelationID returns the caller-supplied correlation identifier,
	// carried through logs and outbound requests.
	CorrelationID() string

	// Parameter returns the named invocation parameter, and whether it was
	// set.
	Parameter(name string) (string, bool)

	// Parameters returns a copy of all invocation parameters.
	Parameters() map[string]string

	WorkDir() string
	Verbose() bool
}

// ExecutionRuntime is the standard Runtime implementation.
type ExecutionRuntime struct {
	jobID         string
	correlationID string
	workDir       string
	verbose       bool

	paramMu sync.RWMutex
	params  map[string]string
}

var _ Runtime = (*ExecutionRuntime)(nil)

// NewExecutionRuntime creates a runtime for one invocation. An empty jobID
// or correlationID is replaced with a generated UUID.
func NewExecutionRuntime(jobID, correlationID string) *ExecutionRuntime {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &ExecutionRuntime{
		jobID:         jobID,
		correlationID: correlationID,
		params:        make(map[string]string),
	}
}

func (r *ExecutionRuntime) JobID() string {
	return r.jobID
}

func (r *ExecutionRuntime) CorrelationID() string {
	return r.correlationID
}

// SetParameter records an invocation parameter. Intended for use while
// building the runtime, before the invocation starts.
func (r *ExecutionRuntime) SetParameter(name, value string) {
	r.paramMu.Lock()
	r.params[name] = value
	r.paramMu.Unlock()
}

func (r *ExecutionRuntime) Parameter(name string) (string, bool) {
	r.paramMu.RLock()
	defer r.paramMu.RUnlock()
	v, ok := r.params[name]
	return v, ok
}

func (r *ExecutionRuntime) Parameters() map[string]string {
	r.paramMu.RLock()
	defer r.paramMu.RUnlock()
	m := make(map[string]string, len(r.params))
	for k, v := range r.params {
		m[k] = v
	}
	return m
}

// SetWorkDir sets the scratch directory for file-producing steps.
func (r *ExecutionRuntime) SetWorkDir(dir string) {
	r.workDir = dir
}

func (r *ExecutionRuntime) WorkDir() string {
	return r.workDir
}

// SetVerbose toggles verbose logging for this invocation.
func (r *ExecutionRuntime) SetVerbose(v bool) {
	r.verbose = v
}

func (r *ExecutionRuntime) Verbose() bool {
	return r.verbose
}
