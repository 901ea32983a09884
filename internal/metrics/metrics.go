// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Install outcomes.
const (
	InstallCounted  = "counted"
	InstallDegraded = "degraded"
	InstallRejected = "rejected"
)

// Forward outcomes.
const (
	ForwardSuccess = "success"
	ForwardFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, tests, etc.
type Recorder interface {
	// Install recording
	IncInstall(outcome string)
	ObserveRecordDuration(duration time.Duration)

	// Secondary sink
	IncForward(outcome string)

	// Counter store
	IncStoreError(op string)
	ObserveScanFields(bucketKind string, fields int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

var (
	_ Recorder    = (*NoopRecorder)(nil)
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Recorder    = (*PrometheusRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)
