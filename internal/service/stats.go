package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickinstall/installstats/internal/metrics"
	"github.com/quickinstall/installstats/internal/model"
)

// Selector picks a time bucket. Zero or negative components default to the
// current UTC date, each independently.
type Selector struct {
	Year  int
	Month int
	Day   int
}

// DayBucket resolves the selector to a daily bucket.
func (sel Selector) DayBucket(now time.Time) model.Bucket {
	b := sel.MonthBucket(now)
	b.Day = sel.Day
	if b.Day <= 0 {
		b.Day = now.UTC().Day()
	}
	return b
}

// MonthBucket resolves the selector to a monthly bucket, ignoring Day.
func (sel Selector) MonthBucket(now time.Time) model.Bucket {
	now = now.UTC()
	b := model.Bucket{Year: sel.Year, Month: sel.Month}
	if b.Year <= 0 {
		b.Year = now.Year()
	}
	if b.Month <= 0 {
		b.Month = int(now.Month())
	}
	return b
}

// StatsService reconstructs aggregate counts from the counter store.
type StatsService struct {
	store   CounterStore
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(store CounterStore, logger *slog.Logger, recorder metrics.Recorder, opts ...Option) *StatsService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	o := buildOptions(opts)

	return &StatsService{
		store:   store,
		logger:  logger.With("component", "service.stats"),
		metrics: recorder,
		now:     o.now,
	}
}

// PackageCounts returns the daily "{package}/{version}/{architecture}" counters.
func (s *StatsService) PackageCounts(ctx context.Context, sel Selector) (model.Counts, error) {
	b := sel.DayBucket(s.now())
	return s.scan(ctx, "daily", b.Key())
}

// MonthlyCounts returns the legacy monthly package counters.
func (s *StatsService) MonthlyCounts(ctx context.Context, sel Selector) (model.Counts, error) {
	b := sel.MonthBucket(s.now())
	return s.scan(ctx, "monthly", b.Key())
}

// AgentCounts returns the daily per-agent counters.
func (s *StatsService) AgentCounts(ctx context.Context, sel Selector) (model.Counts, error) {
	b := sel.DayBucket(s.now())
	return s.scan(ctx, "agents", b.AgentKey())
}

func (s *StatsService) scan(ctx context.Context, kind, key string) (model.Counts, error) {
	counts, err := s.store.ScanAll(ctx, key)
	if err != nil {
		s.metrics.IncStoreError("scan")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.metrics.ObserveScanFields(kind, len(counts))
	s.logger.Debug("bucket scanned", "bucket", key, "fields", len(counts))

	return model.Counts(counts), nil
}
