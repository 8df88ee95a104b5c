package macro

import (
	"errors"
	"time"

	"seleniumacros/domain/entities"

	"github.com/google/uuid"
)

// RunState accumulates errors and extracted values until the next reset
type RunState struct {
	runID     string
	startedAt time.Time
	errors    []entities.RunError
	extracts  []string
}

// NewRunState - creates an empty run state
func NewRunState() *RunState {
	return &RunState{}
}

// Begin - starts a new run and returns its id
func (rs *RunState) Begin(now time.Time) string {
	rs.runID = uuid.NewString()
	rs.startedAt = now
	return rs.runID
}

// RunID - returns the id of the current run
func (rs *RunState) RunID() string {
	return rs.runID
}

// StartedAt - returns when the current run started
func (rs *RunState) StartedAt() time.Time {
	return rs.startedAt
}

// AddError - appends a failure to the error log
func (rs *RunState) AddError(now time.Time, err error) {
	record := entities.RunError{
		RunID:      rs.runID,
		Message:    err.Error(),
		ReturnCode: entities.ReturnCode(err),
		Time:       now,
	}
	var cmdErr *entities.CommandError
	if errors.As(err, &cmdErr) {
		record.Line = cmdErr.Line
		record.Command = cmdErr.Command
	}
	rs.errors = append(rs.errors, record)
}

// AddExtract - appends an extracted value
func (rs *RunState) AddExtract(value string) {
	rs.extracts = append(rs.extracts, value)
}

// Errors - returns a copy of the error log
func (rs *RunState) Errors() []entities.RunError {
	return append([]entities.RunError(nil), rs.errors...)
}

// Extracts - returns a copy of the extract log
func (rs *RunState) Extracts() []string {
	return append([]string(nil), rs.extracts...)
}

// Reset - clears both logs
func (rs *RunState) Reset() {
	rs.runID = ""
	rs.startedAt = time.Time{}
	rs.errors = nil
	rs.extracts = nil
}
