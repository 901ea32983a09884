package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quickinstall/installstats/internal/forward"
	"github.com/quickinstall/installstats/internal/metrics"
	"github.com/quickinstall/installstats/internal/model"
	"github.com/quickinstall/installstats/internal/tarball"
)

// Store operation names used in logs and metrics.
const (
	opIncrementPackage = "increment_package"
	opIncrementAgent   = "increment_agent"
)

// InstallService records install reports.
type InstallService struct {
	classifier *tarball.Classifier
	store      CounterStore
	forwarder  forward.Forwarder
	logger     *slog.Logger
	metrics    metrics.Recorder
	now        func() time.Time

	inflight sync.WaitGroup
}

// NewInstallService creates a new InstallService.
func NewInstallService(store CounterStore, forwarder forward.Forwarder, logger *slog.Logger, recorder metrics.Recorder, opts ...Option) *InstallService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if forwarder == nil {
		forwarder = forward.Noop{}
	}
	o := buildOptions(opts)

	return &InstallService{
		classifier: o.classifier,
		store:      store,
		forwarder:  forwarder,
		logger:     logger.With("component", "service.install"),
		metrics:    recorder,
		now:        o.now,
	}
}

// RecordInput defines input for recording an install.
type RecordInput struct {
	Tarball string
	Agent   string
}

// RecordResult is the outcome of a recorded install.
type RecordResult struct {
	Event  model.InstallEvent
	Bucket model.Bucket
	// Count is the package counter after this install, or 0 when the
	// counter store could not be updated.
	Count int64
}

// Message returns the confirmation shown to the installer.
func (r *RecordResult) Message() string {
	return fmt.Sprintf(
		"We have reported your installation request for %s %s on %s so it should be built soon. Requests today: %d",
		r.Event.Package, r.Event.Version, r.Event.Architecture, r.Count,
	)
}

// Architectures returns the architectures install reports are matched against.
func (s *InstallService) Architectures() []string {
	return s.classifier.Architectures()
}

// Record attributes one install report and counts it in the current day bucket.
//
// Only malformed input is an error. Counter store failures are logged and
// reported as a zero count. The event is forwarded to the secondary sink in
// the background and its outcome never affects the result.
func (s *InstallService) Record(ctx context.Context, input RecordInput) (*RecordResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRecordDuration(time.Since(start))
	}()

	artifact, err := s.classifier.Parse(input.Tarball)
	if err != nil {
		s.metrics.IncInstall(metrics.InstallRejected)
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	event := model.InstallEvent{
		Package:      artifact.Package,
		Version:      artifact.Version,
		Architecture: artifact.Architecture,
		Agent:        input.Agent,
	}
	event.Agent = event.AgentOrDefault()

	bucket := model.DayBucket(s.now())

	// Forwarding starts before the increments and does not wait on them.
	s.forwardAsync(ctx, event)

	degraded := false

	count, err := s.store.Increment(ctx, bucket.Key(), event.Field())
	if err != nil {
		s.storeFailed(opIncrementPackage, bucket.Key(), event.Field(), err)
		count = 0
		degraded = true
	}

	if _, err := s.store.Increment(ctx, bucket.AgentKey(), event.Agent); err != nil {
		s.storeFailed(opIncrementAgent, bucket.AgentKey(), event.Agent, err)
		degraded = true
	}

	if degraded {
		s.metrics.IncInstall(metrics.InstallDegraded)
	} else {
		s.metrics.IncInstall(metrics.InstallCounted)
	}

	s.logger.Debug("install recorded",
		"crate", event.Package,
		"version", event.Version,
		"target", event.Architecture,
		"agent", event.Agent,
		"bucket", bucket.Key(),
		"count", count,
	)

	return &RecordResult{Event: event, Bucket: bucket, Count: count}, nil
}

func (s *InstallService) storeFailed(op, key, field string, err error) {
	s.metrics.IncStoreError(op)
	s.logger.Warn("counter increment failed",
		"op", op,
		"bucket", key,
		"field", field,
		"error", err,
	)
}

// forwardAsync sends event to the secondary sink without blocking the caller.
// Errors are logged and never retried.
func (s *InstallService) forwardAsync(ctx context.Context, event model.InstallEvent) {
	// The forward outlives the request.
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		if err := s.forwarder.Forward(ctx, event); err != nil {
			s.logger.Warn("failed to forward install event",
				"crate", event.Package,
				"version", event.Version,
				"target", event.Architecture,
				"error", err,
			)
			s.metrics.IncForward(metrics.ForwardFailed)
			return
		}

		s.logger.Debug("install event forwarded",
			"crate", event.Package,
			"target", event.Architecture,
		)
		s.metrics.IncForward(metrics.ForwardSuccess)
	}()
}

// Drain waits for in-flight forwards to finish or ctx to expire.
func (s *InstallService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("forwards still in flight: %w", ctx.Err())
	}
}
