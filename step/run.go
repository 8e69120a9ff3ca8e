package step

import (
	"fmt"
	"sync"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/sirupsen/logrus"
)

// DefaultWorkers bounds concurrent step fan-out when no explicit worker
// count is configured.
const DefaultWorkers = 8

// RunSequential executes the supplier's steps one at a time, in order,
// stopping on the first non-success Outcome unless the supplier continues
// on failure. The executed steps' Outcomes are merged into one, which is
// passed to the supplier's post-run hook before being returned.
func RunSequential(s *Supplier, rt runtime.Runtime, log *logrus.Entry) *outcome.Outcome {
	steps := s.steps
	if len(steps) == 0 {
		log.Warnf("Supplier %s has no steps to execute.", s.Name())
	}

	var results []*outcome.Outcome
	for i, st := range steps {
		stepLog := log.WithFields(logrus.Fields{
			common.LogFieldStepName: st.Name(),
			"step_index":            fmt.Sprintf("%d/%d", i+1, len(steps)),
		})
		stepLog.Infof("Executing step: %s (%s)", st.Name(), st.Description())

		out := runStep(st, rt, stepLog)
		results = append(results, out)

		if out.Status() != outcome.StatusSuccess {
			if !s.continueOnFailure {
				stepLog.Warnf("Step %s ended with status %s. Halting supplier %s.",
					st.Name(), out.Status(), s.Name())
				break
			}
			stepLog.Warnf("Step %s ended with status %s but supplier %s continues on failure.",
				st.Name(), out.Status(), s.Name())
		}
	}

	return s.finish(results, log)
}

// RunConcurrent executes all of the supplier's steps concurrently, bounded
// by the given worker count (DefaultWorkers when workers is not positive).
// Every step runs regardless of the others' results; the failure policy
// only applies across suppliers, at the task level. The merged Outcome is
// passed to the supplier's post-run hook before being returned.
func RunConcurrent(s *Supplier, rt runtime.Runtime, log *logrus.Entry, workers int) *outcome.Outcome {
	steps := s.steps
	if len(steps) == 0 {
		log.Warnf("Supplier %s has no steps to execute.", s.Name())
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]*outcome.Outcome, len(steps))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, st := range steps {
		wg.Add(1)
		go func(idx int, st Step) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			stepLog := log.WithFields(logrus.Fields{
				common.LogFieldStepName: st.Name(),
				"step_index":            fmt.Sprintf("%d/%d", idx+1, len(steps)),
			})
			stepLog.Infof("Executing step: %s (%s)", st.Name(), st.Description())
			results[idx] = runStep(st, rt, stepLog)
		}(i, st)
	}
	wg.Wait()

	return s.finish(results, log)
}

// finish merges the collected results and invokes the post-run hook.
func (s *Supplier) finish(results []*outcome.Outcome, log *logrus.Entry) *outcome.Outcome {
	merged := outcome.Merge(results)
	if merged == nil {
		merged = outcome.NewSuccess("")
	}
	if s.postHook != nil {
		log.Debugf("Invoking post-run hook of supplier %s with status %s.", s.Name(), merged.Status())
		s.postHook(merged)
	}
	return merged
}

// runStep executes one step, converting a returned error or an escaped
// panic into a failed Outcome so that a misbehaving step never aborts its
// supplier.
func runStep(st Step, rt runtime.Runtime, log *logrus.Entry) (out *outcome.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Step %s panicked: %v", st.Name(), r)
			err := fmt.Errorf("panic: %v", r)
			out = outcome.NewFailure(
				fmt.Sprintf("unexpected error in step %s: %v", st.Name(), err), err)
		}
	}()

	out, err := st.Execute(rt, log)
	if err != nil {
		prefix := "unexpected error"
		if outcome.IsInternal(err) {
			prefix = "internal error"
		}
		log.Errorf("Step %s failed: %v", st.Name(), err)
		return outcome.NewFailure(fmt.Sprintf("%s in step %s: %v", prefix, st.Name(), err), err)
	}
	if out == nil {
		log.Debugf("Step %s returned no outcome, treating as success.", st.Name())
		out = outcome.NewSuccess("")
	}
	if out.Status() == outcome.StatusSuccess {
		log.Infof("Step %s completed successfully.", st.Name())
	}
	return out
}
