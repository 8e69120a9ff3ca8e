package rule

import (
	"github.com/mensylisir/taskcores/runtime"
)

// Rule is a named precondition evaluated against the invocation runtime
// before a task body runs. Validate returns a failure message, or the
// empty string when the rule passes.
type Rule interface {
	Name() string
	Validate(rt runtime.Runtime) string
}

// Set is a deduplicated, insertion-ordered collection of rules owned by a
// task. Adding the same rule instance twice is a no-op.
type Set struct {
	rules []Rule
	seen  map[Rule]struct{}
}

// NewSet creates an empty rule set.
func NewSet() *Set {
	return &Set{
		seen: make(map[Rule]struct{}),
	}
}

// Add appends a rule unless that exact instance is already present.
func (s *Set) Add(r Rule) {
	if r == nil {
		return
	}
	if _, ok := s.seen[r]; ok {
		return
	}
	s.seen[r] = struct{}{}
	s.rules = append(s.rules, r)
}

// Len returns the number of distinct rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Rules returns the rules in insertion order.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Evaluate runs every rule against rt and returns the failure messages in
// insertion order. An empty result means all rules passed.
func (s *Set) Evaluate(rt runtime.Runtime) []string {
	var failures []string
	for _, r := range s.rules {
		if msg := r.Validate(rt); msg != "" {
			failures = append(failures, msg)
		}
	}
	return failures
}
