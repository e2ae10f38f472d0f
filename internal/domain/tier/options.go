package tier

import (
	"time"

	"github.com/black-mountain1/comb-excel/pkg/logger"
)

// Policy decides what happens to status values outside the known tiers.
type Policy string

// Supported policies.
const (
	PolicyReject     Policy = "reject"
	PolicyQuarantine Policy = "quarantine"
)

// Valid reports whether p is a supported policy.
func (p Policy) Valid() bool { return p == PolicyReject || p == PolicyQuarantine }

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithDateColumn sets the sales column holding the sale date.
func WithDateColumn(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.dateColumn = name
		}
	}
}

// WithStatusColumn sets the customer column holding the tier label.
func WithStatusColumn(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.statusColumn = name
		}
	}
}

// WithPolicy sets the handling of unknown status values.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		if p.Valid() {
			r.policy = p
		}
	}
}

// WithStartDate drops sales dated before start. The zero time disables the filter.
func WithStartDate(start time.Time) Option {
	return func(r *Resolver) {
		r.start = start
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
