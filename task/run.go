package task

import (
	"fmt"
	"strings"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/sirupsen/logrus"
)

// Run is the public entry point for invoking a task. It evaluates the
// task's precondition rules and, when they all pass, delegates to the
// task's execution strategy. Any panic escaping rule evaluation or the
// task body is converted into a failed Outcome; the caller always receives
// a definite Outcome, never a panic.
func Run(t Task, rt runtime.Runtime, log *logrus.Entry) (out *outcome.Outcome) {
	log = log.WithFields(logrus.Fields{
		common.LogFieldTaskName: t.Name(),
		common.LogFieldJobID:    rt.JobID(),
	})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Errorf("Task %s aborted: %v", t.Name(), err)
			out = outcome.NewFailure(
				fmt.Sprintf("unexpected error in task %s: %v", t.Name(), err), err)
		}
	}()

	if failures := t.Rules().Evaluate(rt); len(failures) > 0 {
		msg := strings.Join(failures, outcome.MessageSeparator)
		log.Warnf("Task %s failed validation: %s", t.Name(), strings.Join(failures, "; "))
		return outcome.NewValidationFailed(msg)
	}

	log.Infof("Executing task: %s (%s)", t.Name(), t.Description())
	out = t.Execute(rt, log)
	if out == nil {
		out = outcome.NewSuccess("")
	}
	log.Infof("Task %s finished with status %s.", t.Name(), out.Status())
	return out
}
