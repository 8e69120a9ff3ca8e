package step

import (
	"github.com/mensylisir/taskcores/outcome"
)

// HookFn observes the merged Outcome of a supplier's steps after they have
// all run. Hooks are expected to be side-effect-reporting only; errors they
// raise are not caught by the runners.
type HookFn func(merged *outcome.Outcome)

// Supplier bundles an ordered collection of steps sharing one failure
// policy and an optional post-run hook. Suppliers are value objects owned
// by a task for the duration of one invocation.
type Supplier struct {
	name              string
	steps             []Step
	continueOnFailure bool
	postHook          HookFn
}

// NewSupplier creates a supplier with the given steps. The default failure
// policy halts on the first non-success step.
func NewSupplier(name string, steps ...Step) *Supplier {
	s := &Supplier{name: name}
	s.steps = make([]Step, len(steps))
	copy(s.steps, steps)
	return s
}

// Name returns the supplier's name, used for log scoping.
func (s *Supplier) Name() string {
	return s.name
}

// AddStep appends a step to the supplier's execution list.
func (s *Supplier) AddStep(st Step) {
	s.steps = append(s.steps, st)
}

// Steps returns a copy of the supplier's step list.
func (s *Supplier) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// SetContinueOnFailure controls whether remaining steps (or, for a parallel
// task, remaining suppliers) still run after a non-success result.
func (s *Supplier) SetContinueOnFailure(v bool) {
	s.continueOnFailure = v
}

// ContinueOnFailure reports the supplier's failure policy.
func (s *Supplier) ContinueOnFailure() bool {
	return s.continueOnFailure
}

// SetPostHook registers the hook invoked with the merged Outcome of the
// supplier's steps.
func (s *Supplier) SetPostHook(h HookFn) {
	s.postHook = h
}
