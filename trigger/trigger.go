package trigger

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/batch"
	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/hook"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/status"
	"github.com/mensylisir/taskcores/task"
)

// Trigger is the exposed surface of the execution core: it resolves a task
// by name, runs it asynchronously, and reports its Outcome to the
// task-status store. Batch callbacks re-enter through OnBatchResult.
type Trigger struct {
	registry    *task.Registry
	accumulator *batch.Accumulator
	log         *logrus.Entry

	wg sync.WaitGroup
}

// New creates a trigger over the given registry and status store.
func New(registry *task.Registry, store status.Store, log *logrus.Entry) *Trigger {
	return &Trigger{
		registry:    registry,
		accumulator: batch.NewAccumulator(store),
		log:         log,
	}
}

// Fire resolves the named task and invokes it on its own goroutine,
// reporting the Outcome to the status store when it finishes. The only
// synchronous failure is an unknown task name; everything the task body
// does is absorbed into its reported Outcome.
func (t *Trigger) Fire(name string, rt runtime.Runtime) error {
	tk, err := t.registry.Get(name)
	if err != nil {
		return err
	}

	log := t.log.WithFields(logrus.Fields{
		common.LogFieldTaskName:    name,
		common.LogFieldJobID:       rt.JobID(),
		common.LogFieldCorrelation: rt.CorrelationID(),
	})

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		out := task.Run(tk, rt, log)
		if err := hook.Call(&reportHook{
			accumulator:  t.accumulator,
			invocationID: rt.JobID(),
			out:          out,
			log:          log,
		}); err != nil {
			log.Errorf("Failed to report outcome of task %s: %v", name, err)
		}
	}()
	return nil
}

// OnBatchResult folds an asynchronous partial batch result into the
// invocation's running total.
func (t *Trigger) OnBatchResult(partial *outcome.Outcome, invocationID string) error {
	log := t.log.WithField(common.LogFieldJobID, invocationID)
	return t.accumulator.OnBatchResult(partial, invocationID, log)
}

// Wait blocks until every fired invocation has reported.
func (t *Trigger) Wait() {
	t.wg.Wait()
}

// reportHook persists one finished invocation's Outcome. Persisting runs
// under hook.Call so that a panicking store cannot take the invocation
// goroutine down unreported, and goes through the accumulator so the report
// holds the same per-invocation lock as batch callbacks.
type reportHook struct {
	accumulator  *batch.Accumulator
	invocationID string
	out          *outcome.Outcome
	log          *logrus.Entry
}

func (h *reportHook) Try() error {
	return h.accumulator.Report(h.invocationID, h.out, h.log)
}

func (h *reportHook) Catch(err error) error {
	return err
}

func (h *reportHook) Finally() {
	h.log.Debugf("Outcome of invocation %s reported with status %s.", h.invocationID, h.out.Status())
}
