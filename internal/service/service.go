// Package service provides install recording and statistics logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/quickinstall/installstats/internal/cache"
	"github.com/quickinstall/installstats/internal/tarball"
)

// Service errors.
var (
	ErrMalformedInput   = errors.New("malformed install report")
	ErrStoreUnavailable = errors.New("counter store unavailable")
)

// CounterStore is the bucketed counter backend.
type CounterStore interface {
	// Increment atomically adds one to field in the hash bucketKey.
	Increment(ctx context.Context, bucketKey, field string) (int64, error)
	// ScanAll returns every field of the hash bucketKey.
	ScanAll(ctx context.Context, bucketKey string) (map[string]int64, error)
}

// Option configures a service.
type Option func(*options)

type options struct {
	now        func() time.Time
	classifier *tarball.Classifier
}

// WithClock overrides the wall clock used to pick buckets.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithClassifier overrides the architecture classifier.
func WithClassifier(c *tarball.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:        time.Now,
		classifier: tarball.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var _ CounterStore = (*cache.Cache)(nil)
