package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	installs       *prometheus.CounterVec
	recordDuration prometheus.Histogram
	forwards       *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	scanFields     *prometheus.HistogramVec
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		installs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "installstats_installs_total",
				Help: "Install reports by outcome",
			},
			[]string{"outcome"},
		),
		recordDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "installstats_record_duration_seconds",
				Help:    "Time spent recording one install report",
				Buckets: prometheus.DefBuckets,
			},
		),
		forwards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "installstats_forwards_total",
				Help: "Events forwarded to the secondary sink by outcome",
			},
			[]string{"outcome"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "installstats_store_errors_total",
				Help: "Counter store failures by operation",
			},
			[]string{"op"},
		),
		scanFields: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "installstats_scan_fields",
				Help:    "Fields returned per bucket scan",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"bucket"},
		),
	}

	reg.MustRegister(p.installs, p.recordDuration, p.forwards, p.storeErrors, p.scanFields)
	return p
}

// IncInstall increments the install counter.
func (p *PrometheusRecorder) IncInstall(outcome string) {
	p.installs.WithLabelValues(outcome).Inc()
}

// ObserveRecordDuration observes a record call duration.
func (p *PrometheusRecorder) ObserveRecordDuration(duration time.Duration) {
	p.recordDuration.Observe(duration.Seconds())
}

// IncForward increments the forward counter.
func (p *PrometheusRecorder) IncForward(outcome string) {
	p.forwards.WithLabelValues(outcome).Inc()
}

// IncStoreError increments the store error counter.
func (p *PrometheusRecorder) IncStoreError(op string) {
	p.storeErrors.WithLabelValues(op).Inc()
}

// ObserveScanFields observes the size of a scanned bucket.
func (p *PrometheusRecorder) ObserveScanFields(bucketKind string, fields int) {
	p.scanFields.WithLabelValues(bucketKind).Observe(float64(fields))
}
