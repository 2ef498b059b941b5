package metrics

import (
	"time"

	"github.com/kilianp07/routegap/core/gap"
)

// AnalysisEvent is emitted after a successful analysis run.
type AnalysisEvent struct {
	Report   gap.Report
	Duration time.Duration
}

// MetricsSink records analysis runs for observability purposes.
type MetricsSink interface {
	RecordAnalysis(ev AnalysisEvent) error
}

// FailureEvent describes a rejected analysis run.
type FailureEvent struct {
	RunID  string
	Source string
	// Kind is gap.Kind of the error, or "source" when loading failed.
	Kind  string
	Error string
	Time  time.Time
}

// FailureRecorder records failed runs.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAnalysis(AnalysisEvent) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error   { return nil }
