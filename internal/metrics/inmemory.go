package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	InstallsCounted     uint64
	InstallsDegraded    uint64
	InstallsRejected    uint64
	RecordDurationCount uint64
	ForwardsSucceeded   uint64
	ForwardsFailed      uint64
	StoreErrors         map[string]uint64
	ScansObserved       uint64
	ScanFieldsTotal     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	installsCounted     uint64
	installsDegraded    uint64
	installsRejected    uint64
	recordDurationCount uint64
	forwardsSucceeded   uint64
	forwardsFailed      uint64
	scansObserved       uint64
	scanFieldsTotal     uint64

	mu          sync.Mutex
	storeErrors map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{storeErrors: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	storeErrors := make(map[string]uint64, len(m.storeErrors))
	for op, n := range m.storeErrors {
		storeErrors[op] = n
	}
	m.mu.Unlock()

	return Snapshot{
		InstallsCounted:     atomic.LoadUint64(&m.installsCounted),
		InstallsDegraded:    atomic.LoadUint64(&m.installsDegraded),
		InstallsRejected:    atomic.LoadUint64(&m.installsRejected),
		RecordDurationCount: atomic.LoadUint64(&m.recordDurationCount),
		ForwardsSucceeded:   atomic.LoadUint64(&m.forwardsSucceeded),
		ForwardsFailed:      atomic.LoadUint64(&m.forwardsFailed),
		StoreErrors:         storeErrors,
		ScansObserved:       atomic.LoadUint64(&m.scansObserved),
		ScanFieldsTotal:     atomic.LoadUint64(&m.scanFieldsTotal),
	}
}

// IncInstall increments the counter for the given outcome.
func (m *InMemoryRecorder) IncInstall(outcome string) {
	switch outcome {
	case InstallCounted:
		atomic.AddUint64(&m.installsCounted, 1)
	case InstallDegraded:
		atomic.AddUint64(&m.installsDegraded, 1)
	case InstallRejected:
		atomic.AddUint64(&m.installsRejected, 1)
	}
}

// ObserveRecordDuration records a record call.
func (m *InMemoryRecorder) ObserveRecordDuration(duration time.Duration) {
	atomic.AddUint64(&m.recordDurationCount, 1)
}

// IncForward increments the forward counter for the given outcome.
func (m *InMemoryRecorder) IncForward(outcome string) {
	if outcome == ForwardSuccess {
		atomic.AddUint64(&m.forwardsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.forwardsFailed, 1)
}

// IncStoreError increments the store error counter for op.
func (m *InMemoryRecorder) IncStoreError(op string) {
	m.mu.Lock()
	m.storeErrors[op]++
	m.mu.Unlock()
}

// ObserveScanFields records the size of a scanned bucket.
func (m *InMemoryRecorder) ObserveScanFields(bucketKind string, fields int) {
	atomic.AddUint64(&m.scansObserved, 1)
	atomic.AddUint64(&m.scanFieldsTotal, uint64(fields))
}
