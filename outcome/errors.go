package outcome

import "github.com/pkg/errors"

// internalError tags an error as originating inside a collaborator or the
// framework itself, as opposed to a deliberate business failure. Step
// runners render internal errors with a distinct message prefix, but both
// categories fail the step rather than propagating.
type internalError struct {
	err error
}

func (e *internalError) Error() string {
	return e.err.Error()
}

func (e *internalError) Unwrap() error {
	return e.err
}

// MarkInternal wraps err so that IsInternal reports true for it.
// A nil err returns nil.
func MarkInternal(err error) error {
	if err == nil {
		return nil
	}
	return &internalError{err: err}
}

// Internalf creates a new internal error from a format string.
func Internalf(format string, args ...interface{}) error {
	return &internalError{err: errors.Errorf(format, args...)}
}

// IsInternal reports whether err or anything in its chain was marked
// internal.
func IsInternal(err error) bool {
	for err != nil {
		if _, ok := err.(*internalError); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
