package step

import (
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/sirupsen/logrus"
)

// Step represents the smallest unit of task logic.
type Step interface {
	// Name returns the short name of the step.
	Name() string

	// Description returns a human-readable description of what the step does.
	Description() string

	// Execute performs the step's action. It returns the step's Outcome,
	// or an error when the step could not run at all; the runner converts
	// a returned error into a failed Outcome carrying it as cause.
	// The logger entry is pre-configured with step context.
	Execute(rt runtime.Runtime, logger *logrus.Entry) (*outcome.Outcome, error)
}

// Func is the signature of a plain-function step body.
type Func func(rt runtime.Runtime, logger *logrus.Entry) (*outcome.Outcome, error)

// funcStep adapts a Func to the Step interface.
type funcStep struct {
	name        string
	description string
	fn          Func
}

// NewFunc wraps fn as a named Step.
func NewFunc(name, description string, fn Func) Step {
	return &funcStep{
		name:        name,
		description: description,
		fn:          fn,
	}
}

func (s *funcStep) Name() string {
	return s.name
}

func (s *funcStep) Description() string {
	return s.description
}

func (s *funcStep) Execute(rt runtime.Runtime, logger *logrus.Entry) (*outcome.Outcome, error) {
	return s.fn(rt, logger)
}
