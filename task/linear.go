package task

import (
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/step"
	"github.com/sirupsen/logrus"
)

// LinearTask runs a single supplier's steps one at a time, in order,
// stopping early on the first non-success unless the supplier continues on
// failure.
type LinearTask struct {
	BaseTask
	supplier *step.Supplier
}

var _ Task = (*LinearTask)(nil)

// NewLinearTask creates a sequential task over the given supplier.
func NewLinearTask(name, description string, supplier *step.Supplier) *LinearTask {
	return &LinearTask{
		BaseTask: NewBaseTask(name, description),
		supplier: supplier,
	}
}

// Supplier returns the task's step supplier.
func (t *LinearTask) Supplier() *step.Supplier {
	return t.supplier
}

// Execute runs the supplier sequentially and returns the merged Outcome.
func (t *LinearTask) Execute(rt runtime.Runtime, log *logrus.Entry) *outcome.Outcome {
	return step.RunSequential(t.supplier, rt, log)
}
