package errors

import (
	"errors"
	"fmt"
)

const (
	ExitOK         = 0
	ExitViolations = 1
	ExitInternal   = 1
)

// CommandError represents a command failure that maps onto a process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance wrapping err.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}

// ViolationsError signals that an audit completed and found policy violations.
type ViolationsError struct {
	Count int
}

func (e *ViolationsError) Error() string {
	return fmt.Sprintf("%d network policy violation(s) found", e.Count)
}

// ExitCode extracts the process exit code carried by err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var violations *ViolationsError
	if errors.As(err, &violations) {
		return ExitViolations
	}
	return ExitInternal
}
