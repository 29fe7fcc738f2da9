// Package metrics records site build observations. The Prometheus recorder
// backs the preview server's /metrics endpoint; builds without metrics use
// NoopRecorder.
package metrics

import "time"

// ResultLabel enumerates page and build outcomes.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives build observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObservePageDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(result ResultLabel)
	SetPagesRendered(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration)  {}
func (NoopRecorder) IncPageResult(ResultLabel)          {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(ResultLabel)        {}
func (NoopRecorder) SetPagesRendered(int)               {}
