// Package checkers holds what the external compiler and linter adapters share.
package checkers

import "fmt"

// InvocationError reports that an external checker could not be run or
// returned output that could not be understood.
type InvocationError struct {
	Checker string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Checker, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
