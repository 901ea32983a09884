package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncInstall is a no-op.
func (n *NoopRecorder) IncInstall(outcome string) {}

// ObserveRecordDuration is a no-op.
func (n *NoopRecorder) ObserveRecordDuration(duration time.Duration) {}

// IncForward is a no-op.
func (n *NoopRecorder) IncForward(outcome string) {}

// IncStoreError is a no-op.
func (n *NoopRecorder) IncStoreError(op string) {}

// ObserveScanFields is a no-op.
func (n *NoopRecorder) ObserveScanFields(bucketKind string, fields int) {}
