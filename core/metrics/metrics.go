package metrics

import "time"

// DemandEvent summarises one demand generation run.
type DemandEvent struct {
	RunID         string
	Network       string
	Mode          string
	Requested     int
	Retained      int
	DistinctTimes int
	Duration      time.Duration
	Time          time.Time
}

// ExtractionEvent summarises one trace extraction run.
type ExtractionEvent struct {
	RunID     string
	Kind      string
	Source    string
	Seen      int
	Kept      int
	Dropped   int
	Recovered bool
	Duration  time.Duration
	Time      time.Time
}

// Recorder records pipeline runs for observability purposes.
type Recorder interface {
	RecordDemand(ev DemandEvent) error
	RecordExtraction(ev ExtractionEvent) error
}

// Flusher is implemented by recorders that buffer output until the end of
// a command.
type Flusher interface {
	Flush() error
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) RecordDemand(DemandEvent) error         { return nil }
func (NopRecorder) RecordExtraction(ExtractionEvent) error { return nil }
