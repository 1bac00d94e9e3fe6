package reconciler

import (
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
)

// options configures a reconciler.
type options struct {
	workers int
	current []*records.Authoritative // full snapshot for deletions
}

func defaultOptions() *options {
	return &options{workers: 1}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithWorkers sets how many goroutines search for spatial candidates.
// Decisions are always made serially in input order.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.workers = n
		return nil
	}
}

// WithCurrentSnapshot sets the complete current authoritative snapshot.
// Deletions are computed against it instead of the reconciled records,
// which is required when only changed records are reconciled.
func WithCurrentSnapshot(current []*records.Authoritative) Option {
	return func(o *options) error {
		o.current = current
		return nil
	}
}
