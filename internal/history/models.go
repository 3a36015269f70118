package history

import "time"

// Status is a session's last recorded outcome.
type Status string

const (
	StatusRecording Status = "recording"
	StatusStopped   Status = "stopped"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Entry is one recording session row.
type Entry struct {
	ID              string
	Filename        string
	OutputPath      string
	Target          string
	Status          Status
	StartedAt       time.Time
	StoppedAt       *time.Time
	ProcessedAt     *time.Time
	DurationSeconds int
	Transcoder      string
	ErrorMessage    string
}
