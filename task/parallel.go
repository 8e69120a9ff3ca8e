package task

import (
	"fmt"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/step"
	"github.com/sirupsen/logrus"
)

// ParallelTask runs multiple suppliers in order. Within one supplier the
// steps execute concurrently and their merged Outcome is handed to that
// supplier's post-run hook; across suppliers execution is sequential,
// stopping early on a non-success supplier result unless that supplier
// continues on failure.
type ParallelTask struct {
	BaseTask
	suppliers []*step.Supplier
	workers   int
}

var _ Task = (*ParallelTask)(nil)

// NewParallelTask creates a parallel task over the given suppliers with
// the default worker-pool bound.
func NewParallelTask(name, description string, suppliers ...*step.Supplier) *ParallelTask {
	t := &ParallelTask{
		BaseTask: NewBaseTask(name, description),
		workers:  step.DefaultWorkers,
	}
	t.suppliers = make([]*step.Supplier, len(suppliers))
	copy(t.suppliers, suppliers)
	return t
}

// AddSupplier appends a supplier to the task's execution list.
func (t *ParallelTask) AddSupplier(s *step.Supplier) {
	t.suppliers = append(t.suppliers, s)
}

// SetWorkers bounds the concurrent step fan-out within each supplier.
// Values below 1 fall back to step.DefaultWorkers.
func (t *ParallelTask) SetWorkers(n int) {
	if n < 1 {
		n = step.DefaultWorkers
	}
	t.workers = n
}

// Execute runs the suppliers in order and merges their Outcomes into the
// task's final Outcome. Supplier results appended before an early stop are
// retained in the merge.
func (t *ParallelTask) Execute(rt runtime.Runtime, log *logrus.Entry) *outcome.Outcome {
	var results []*outcome.Outcome
	for i, sup := range t.suppliers {
		supLog := log.WithFields(logrus.Fields{
			common.LogFieldSupplierName: sup.Name(),
			"supplier_index":            fmt.Sprintf("%d/%d", i+1, len(t.suppliers)),
		})
		supLog.Infof("Executing supplier %s with %d concurrent steps.", sup.Name(), len(sup.Steps()))

		merged := step.RunConcurrent(sup, rt, supLog, t.workers)
		results = append(results, merged)

		if merged.Status() != outcome.StatusSuccess && !sup.ContinueOnFailure() {
			supLog.Warnf("Supplier %s ended with status %s. Halting task %s.",
				sup.Name(), merged.Status(), t.Name())
			break
		}
	}

	out := outcome.Merge(results)
	if out == nil {
		log.Warnf("Task %s has no suppliers to execute.", t.Name())
		out = outcome.NewSuccess("")
	}
	return out
}
