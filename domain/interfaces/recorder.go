package interfaces

import "time"

// Recorder observes every processed macro line
type Recorder interface {
	// CommandProcessed records one line; status is "ok", "error", "unsupported" or "comment"
	CommandProcessed(command, status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CommandProcessed(string, string, time.Duration) {}

// NopRecorder returns a recorder that drops every observation
func NopRecorder() Recorder {
	return nopRecorder{}
}
