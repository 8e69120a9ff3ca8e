package step

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/runtime"
)

// mockStep records whether it ran and returns a canned result.
type mockStep struct {
	name     string
	out      *outcome.Outcome
	err      error
	panicMsg string

	mu       sync.Mutex
	executed int
}

func (m *mockStep) Name() string        { return m.name }
func (m *mockStep) Description() string { return "mock step " + m.name }

func (m *mockStep) Execute(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
	m.mu.Lock()
	m.executed++
	m.mu.Unlock()
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.out, m.err
}

func (m *mockStep) executions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executed
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testRuntime() runtime.Runtime {
	return runtime.NewExecutionRuntime("job-1", "corr-1")
}

func TestRunSequentialStopsOnFirstFailure(t *testing.T) {
	s1 := &mockStep{name: "s1", out: outcome.NewSuccess("one")}
	s2 := &mockStep{name: "s2", out: outcome.NewFailure("two failed", nil)}
	s3 := &mockStep{name: "s3", out: outcome.NewSuccess("three")}

	sup := NewSupplier("test", s1, s2, s3)
	merged := RunSequential(sup, testRuntime(), testLog())

	assert.Equal(t, 1, s1.executions())
	assert.Equal(t, 1, s2.executions())
	assert.Equal(t, 0, s3.executions(), "third step must not run")
	assert.Equal(t, outcome.StatusFailed, merged.Status())
	assert.Equal(t, "one\ntwo failed", merged.Message(), "only the executed steps are merged")
}

func TestRunSequentialContinueOnFailureRunsAll(t *testing.T) {
	s1 := &mockStep{name: "s1", out: outcome.NewSuccess("one")}
	s2 := &mockStep{name: "s2", out: outcome.NewFailure("two failed", nil)}
	s3 := &mockStep{name: "s3", out: outcome.NewSuccess("three")}

	sup := NewSupplier("test", s1, s2, s3)
	sup.SetContinueOnFailure(true)
	merged := RunSequential(sup, testRuntime(), testLog())

	assert.Equal(t, 1, s3.executions())
	assert.Equal(t, outcome.StatusFailed, merged.Status())
	assert.Equal(t, "one\ntwo failed\nthree", merged.Message())
}

func TestRunSequentialConvertsErrorToFailedOutcome(t *testing.T) {
	stepErr := errors.New("collaborator down")
	s1 := &mockStep{name: "s1", err: stepErr}

	merged := RunSequential(NewSupplier("test", s1), testRuntime(), testLog())

	require.Equal(t, outcome.StatusFailed, merged.Status())
	assert.Contains(t, merged.Message(), "unexpected error in step s1")
	assert.Equal(t, stepErr, merged.Cause())
}

func TestRunSequentialInternalErrorPrefix(t *testing.T) {
	s1 := &mockStep{name: "s1", err: outcome.Internalf("query failed")}

	merged := RunSequential(NewSupplier("test", s1), testRuntime(), testLog())

	require.Equal(t, outcome.StatusFailed, merged.Status())
	assert.Contains(t, merged.Message(), "internal error in step s1")
}

func TestRunSequentialConvertsPanicToFailedOutcome(t *testing.T) {
	s1 := &mockStep{name: "s1", panicMsg: "nil deref"}
	s2 := &mockStep{name: "s2", out: outcome.NewSuccess("two")}

	merged := RunSequential(NewSupplier("test", s1, s2), testRuntime(), testLog())

	assert.Equal(t, outcome.StatusFailed, merged.Status())
	assert.Contains(t, merged.Message(), "unexpected error in step s1")
	assert.Equal(t, 0, s2.executions())
}

func TestRunSequentialInvokesPostHookWithMergedOutcome(t *testing.T) {
	s1 := &mockStep{name: "s1", out: outcome.NewSuccess("one")}
	sup := NewSupplier("test", s1)

	var observed *outcome.Outcome
	sup.SetPostHook(func(merged *outcome.Outcome) { observed = merged })

	merged := RunSequential(sup, testRuntime(), testLog())
	require.NotNil(t, observed)
	assert.Same(t, merged, observed)
}

func TestRunSequentialEmptySupplierSucceeds(t *testing.T) {
	merged := RunSequential(NewSupplier("empty"), testRuntime(), testLog())
	assert.Equal(t, outcome.StatusSuccess, merged.Status())
}

func TestRunSequentialNilOutcomeTreatedAsSuccess(t *testing.T) {
	s1 := &mockStep{name: "s1"}
	merged := RunSequential(NewSupplier("test", s1), testRuntime(), testLog())
	assert.Equal(t, outcome.StatusSuccess, merged.Status())
}

func TestRunConcurrentRunsEveryStep(t *testing.T) {
	steps := make([]Step, 10)
	mocks := make([]*mockStep, 10)
	for i := range steps {
		m := &mockStep{name: "s", out: outcome.NewSuccess("")}
		mocks[i] = m
		steps[i] = m
	}
	// One failing step does not stop the others within a supplier.
	mocks[3].out = outcome.NewFailure("bad", nil)

	sup := NewSupplier("test", steps...)
	merged := RunConcurrent(sup, testRuntime(), testLog(), 4)

	for _, m := range mocks {
		assert.Equal(t, 1, m.executions())
	}
	assert.Equal(t, outcome.StatusFailed, merged.Status())
}

func TestRunConcurrentRespectsWorkerBound(t *testing.T) {
	const workers = 3
	var inFlight, peak int64

	steps := make([]Step, 12)
	for i := range steps {
		steps[i] = NewFunc("worker", "", func(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return outcome.NewSuccess(""), nil
		})
	}

	merged := RunConcurrent(NewSupplier("bounded", steps...), testRuntime(), testLog(), workers)

	assert.Equal(t, outcome.StatusSuccess, merged.Status())
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(workers))
}

func TestRunConcurrentMergesMetadata(t *testing.T) {
	s1 := NewFunc("a", "", func(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
		return outcome.NewSuccess("").AddMetadata("a", "1"), nil
	})
	s2 := NewFunc("b", "", func(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
		return outcome.NewSuccess("").AddMetadata("b", "2"), nil
	})

	merged := RunConcurrent(NewSupplier("test", s1, s2), testRuntime(), testLog(), 0)

	got := merged.Metadata()
	assert.Equal(t, "1", got["a"])
	assert.Equal(t, "2", got["b"])
}
