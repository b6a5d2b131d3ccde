package engine

import "fmt"

// DeveloperError signals an internal invariant violation: a null
// responsible racer where one is required, an unknown ability name, an
// inconsistent modifier identity. These are programming bugs, never a
// recoverable in-band game outcome.
type DeveloperError struct {
	msg string
}

func (e *DeveloperError) Error() string {
	return fmt.Sprintf("developer error: %s", e.msg)
}

func newDeveloperError(format string, args ...any) *DeveloperError {
	return &DeveloperError{msg: fmt.Sprintf(format, args...)}
}

// IsDeveloperError reports whether err is a DeveloperError.
func IsDeveloperError(err error) bool {
	_, ok := err.(*DeveloperError)
	return ok
}
