package reconciler

import (
	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// Options configures a reconciler.
type options struct {
	strategy   Strategy
	tracking   bool
	differOpts []differ.Option
}

func defaultOptions(s schema.Schema) *options {
	return &options{
		strategy: StrategyFor(s),
		tracking: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with defaults derived from s.
func newOptions(s schema.Schema, opts ...Option) (*options, error) {
	return defaultOptions(s).apply(opts...)
}

// WithStrategy overrides the merge strategy selected by the schema's mode.
func WithStrategy(strategy Strategy) Option {
	return func(r *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		r.strategy = strategy
		return nil
	}
}

// WithAuthorities replaces the schema's column authorities.
func WithAuthorities(authorities authority.Authority) Option {
	return func(r *options) error {
		if authorities == nil {
			return &errors.ValidationError{
				Field:   "authorities",
				Message: "cannot be nil",
			}
		}
		r.strategy = NewAuthorityStrategy(authorities)
		return nil
	}
}

// WithTracking enables the per-row changeset. Counters are kept either way.
func WithTracking(enabled bool) Option {
	return func(r *options) error {
		r.tracking = enabled
		return nil
	}
}

// WithIgnoredColumns excludes columns from change detection.
func WithIgnoredColumns(columns ...string) Option {
	return func(r *options) error {
		r.differOpts = append(r.differOpts, differ.WithIgnoredColumns(columns...))
		return nil
	}
}
