package rule

import (
	"fmt"
	"strings"

	"github.com/mensylisir/taskcores/runtime"
)

type requireJobID struct{}

func (*requireJobID) Name() string { return "require-job-id" }

func (*requireJobID) Validate(rt runtime.Runtime) string {
	if strings.TrimSpace(rt.JobID()) == "" {
		return "invocation is missing a job id"
	}
	return ""
}

// RequireJobID returns a rule that fails when the runtime carries no job id.
func RequireJobID() Rule {
	return &requireJobID{}
}

type requireCorrelationID struct{}

func (*requireCorrelationID) Name() string { return "require-correlation-id" }

func (*requireCorrelationID) Validate(rt runtime.Runtime) string {
	if strings.TrimSpace(rt.CorrelationID()) == "" {
		return "invocation is missing a correlation id"
	}
	return ""
}

// RequireCorrelationID returns a rule that fails when the runtime carries
// no correlation id.
func RequireCorrelationID() Rule {
	return &requireCorrelationID{}
}

type requireParameter struct {
	name string
}

func (r *requireParameter) Name() string {
	return "require-parameter-" + r.name
}

func (r *requireParameter) Validate(rt runtime.Runtime) string {
	v, ok := rt.Parameter(r.name)
	if !ok || strings.TrimSpace(v) == "" {
		return fmt.Sprintf("required parameter %q is not set", r.name)
	}
	return ""
}

// RequireParameter returns a rule that fails when the named invocation
// parameter is absent or blank.
func RequireParameter(name string) Rule {
	return &requireParameter{name: name}
}
