package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitInternal, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitViolations, ExitCode(fmt.Errorf("audit: %w", &ViolationsError{Count: 2})))
	assert.Equal(t, 3, ExitCode(NewCommandError(errors.New("scenario mismatch"), 3)))
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := &ViolationsError{Count: 1}
	err := NewCommandError(inner, ExitViolations)

	var target *ViolationsError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "1 network policy violation(s) found", err.Error())
}
