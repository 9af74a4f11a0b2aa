package cli

import (
	"errors"
	"fmt"
)

// Exit codes for the hed CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful extraction
	ExitSuccess = 0

	// ExitFailure indicates the extraction or a document pass failed
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3
)

// ExitError carries an exit code through cobra's error return path.
type ExitError struct {
	Code int
}

// NewExitError creates an error carrying the given exit code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode maps an error from command execution to a process exit code.
// A nil error is success; any error without an explicit code is a failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
