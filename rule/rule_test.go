package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mensylisir/taskcores/runtime"
)

type alwaysFail struct {
	msg string
}

func (r *alwaysFail) Name() string                       { return "always-fail" }
func (r *alwaysFail) Validate(rt runtime.Runtime) string { return r.msg }

func TestSetDeduplicatesSameInstance(t *testing.T) {
	s := NewSet()
	r := &alwaysFail{msg: "nope"}

	s.Add(r)
	s.Add(r)
	s.Add(r)
	assert.Equal(t, 1, s.Len())

	// A different instance of the same type is a different rule.
	s.Add(&alwaysFail{msg: "nope"})
	assert.Equal(t, 2, s.Len())
}

func TestSetIgnoresNil(t *testing.T) {
	s := NewSet()
	s.Add(nil)
	assert.Equal(t, 0, s.Len())
}

func TestEvaluateCollectsFailuresInInsertionOrder(t *testing.T) {
	s := NewSet()
	s.Add(&alwaysFail{msg: "first"})
	s.Add(RequireJobID())
	s.Add(&alwaysFail{msg: "second"})

	rt := runtime.NewExecutionRuntime("job-1", "corr-1")
	failures := s.Evaluate(rt)
	assert.Equal(t, []string{"first", "second"}, failures)
}

func TestEvaluateAllPass(t *testing.T) {
	s := NewSet()
	s.Add(RequireJobID())
	s.Add(RequireCorrelationID())

	rt := runtime.NewExecutionRuntime("job-1", "corr-1")
	assert.Empty(t, s.Evaluate(rt))
}

func TestRequireParameter(t *testing.T) {
	r := RequireParameter("source")
	rt := runtime.NewExecutionRuntime("job-1", "corr-1")

	assert.NotEmpty(t, r.Validate(rt))

	rt.SetParameter("source", "  ")
	assert.NotEmpty(t, r.Validate(rt), "blank parameter should fail")

	rt.SetParameter("source", "warehouse")
	assert.Empty(t, r.Validate(rt))
}
