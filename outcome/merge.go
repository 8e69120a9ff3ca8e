package outcome

import "strings"

// MessageSeparator joins the non-blank messages of merged Outcomes.
const MessageSeparator = "\n"

// Merge folds an ordered collection of Outcomes into one.
//
// A single-element input is returned unchanged, preserving reference
// identity. Otherwise the merged status is the highest-priority non-unknown
// status (earliest occurrence wins ties), the merged message is the
// non-blank messages joined with MessageSeparator in input order, the cause
// is the last non-nil cause encountered, and the metadata is the union of
// all inputs with later keys overwriting earlier ones.
//
// Merging an empty or all-nil input returns nil.
func Merge(outcomes []*Outcome) *Outcome {
	nonNil := outcomes[:0:0]
	for _, o := range outcomes {
		if o != nil {
			nonNil = append(nonNil, o)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	status := StatusUnknown
	var messages []string
	var cause error
	meta := make(map[string]string)

	for _, o := range nonNil {
		if o.status != StatusUnknown && o.status.Priority() > status.Priority() {
			status = o.status
		}
		if strings.TrimSpace(o.message) != "" {
			messages = append(messages, o.message)
		}
		if o.cause != nil {
			cause = o.cause
		}
		for k, v := range o.Metadata() {
			meta[k] = v
		}
	}

	merged := New(status, strings.Join(messages, MessageSeparator))
	merged.cause = cause
	merged.meta = meta
	return merged
}
