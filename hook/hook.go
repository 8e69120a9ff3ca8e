package hook

import "github.com/pkg/errors"

// Interface is a try/catch/finally triple for side-effecting work whose
// failure must not take the caller down with it.
type Interface interface {
	// Try performs the work.
	Try() error

	// Catch handles the error returned by Try. The returned error, if
	// non-nil, becomes Call's result.
	Catch(err error) error

	// Finally runs after Try and Catch, regardless of their results.
	Finally()
}

// Call runs the hook, converting an escaped panic into an error.
func Call(h Interface) (err error) {
	if h == nil {
		return errors.New("hook cannot be nil")
	}

	defer h.Finally()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during hook execution: %v", r)
		}
	}()

	if tryErr := h.Try(); tryErr != nil {
		err = h.Catch(tryErr)
	}
	return err
}
