package task

import (
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/rule"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/sirupsen/logrus"
)

// Task represents a named, invokable unit of business logic with
// precondition validation and an execution strategy. Tasks are long-lived
// and stateless with respect to a single invocation; per-invocation state
// lives in the runtime or in invocation-scoped helpers.
//
// Callers should invoke tasks through Run, which evaluates the rule set
// and converts escaped panics, rather than calling Execute directly.
type Task interface {
	// Name returns the unique name of the task, used for registry lookup.
	Name() string

	// Description provides a human-readable summary of what the task does.
	Description() string

	// Rules returns the task's precondition rule set.
	Rules() *rule.Set

	// Execute runs the task's step-execution strategy and returns the
	// merged Outcome. The logger entry is pre-configured with task context.
	Execute(rt runtime.Runtime, logger *logrus.Entry) *outcome.Outcome
}
