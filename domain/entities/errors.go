package entities

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrElementNotFound       = errors.New("element not found")
	ErrUnsupportedCapability = errors.New("unsupported capability")
	ErrNotImplemented        = errors.New("not implemented")
	ErrTimeout               = errors.New("timeout")
	ErrDriverNotStarted      = errors.New("driver is not started")
)

// Return codes reported to hosts of the iMacros interface
const (
	ReturnOK      = 1
	ReturnFail    = -1
	ReturnTimeout = -3
)

// CommandError ties a failure to the macro line that produced it
type CommandError struct {
	Line    int
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ReturnCode - maps an error to the code hosts expect
func ReturnCode(err error) int {
	switch {
	case err == nil:
		return ReturnOK
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ReturnTimeout
	default:
		return ReturnFail
	}
}
