// Package cli implements the vsshift and vsinfo commands.
package cli

import (
	"errors"
	"fmt"
)

// Exit codes for the commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a processing step failed
	ExitCommandError = 2 // bad flags or configuration
)

// ExitError carries the exit code and the step that failed.
type ExitError struct {
	Code int
	Step string
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return e.Step
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError attaches an exit code and step name to err.
func WrapExitError(code int, step string, err error) *ExitError {
	return &ExitError{Code: code, Step: step, Err: err}
}

// GetExitCode returns the code of an ExitError in err's chain, ExitSuccess
// for nil and ExitFailure otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
