package entities

import "time"

// RunError is one entry of the run error log
type RunError struct {
	RunID      string    `json:"run_id"`
	Line       int       `json:"line"`
	Command    string    `json:"command"`
	Message    string    `json:"message"`
	ReturnCode int       `json:"return_code"`
	Time       time.Time `json:"time"`
}

// RunReport is the persisted summary of the last macro run
type RunReport struct {
	RunID      string            `json:"run_id"`
	Script     string            `json:"script"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	ReturnCode int               `json:"return_code"`
	Errors     []RunError        `json:"errors"`
	Extracts   []string          `json:"extracts"`
	Builtins   map[string]string `json:"builtins,omitempty"`
}
