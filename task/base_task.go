package task

import (
	"github.com/mensylisir/taskcores/rule"
)

// BaseTask provides the name, description and rule-set plumbing shared by
// concrete task implementations. It is meant to be embedded.
type BaseTask struct {
	name        string
	description string
	rules       *rule.Set
}

// NewBaseTask creates a new BaseTask with an empty rule set.
func NewBaseTask(name, description string) BaseTask {
	return BaseTask{
		name:        name,
		description: description,
		rules:       rule.NewSet(),
	}
}

// Name returns the name of the task.
func (bt *BaseTask) Name() string {
	return bt.name
}

// Description returns the description of the task.
func (bt *BaseTask) Description() string {
	return bt.description
}

// Rules returns the task's precondition rule set.
func (bt *BaseTask) Rules() *rule.Set {
	return bt.rules
}

// AddRule adds a precondition rule. Adding the same rule instance twice is
// a no-op.
func (bt *BaseTask) AddRule(r rule.Rule) {
	bt.rules.Add(r)
}
