// Package snap provides tunable options and error definitions for snapping
// barrier points onto their nearest flowlines.
package snap

import "errors"

// Sentinel errors for snapping.
var (
	// ErrNilLines is returned if a nil flowline table is passed.
	ErrNilLines = errors.New("snap: flowline table is nil")

	// ErrNilIndex is returned if a nil spatial index is passed.
	ErrNilIndex = errors.New("snap: spatial index is nil")

	// ErrIndexMismatch is returned when the index does not cover exactly the
	// flowline table (ordinal spaces differ).
	ErrIndexMismatch = errors.New("snap: index size does not match flowline table")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("snap: invalid option supplied")
)

// Option configures snapping via functional arguments. An invalid Option is
// recorded internally and surfaced as ErrOptionViolation when Points runs.
type Option func(*Options)

// Options holds the snapping parameters.
type Options struct {
	// Tolerance is the maximum distance in metres between a point and a
	// flowline for the point to snap. Points with no flowline within
	// Tolerance are dropped.
	Tolerance float64

	// PreferEndpoint, when set, re-snaps onto the nearer endpoint of the
	// chosen flowline whenever that endpoint is itself within Tolerance of
	// the original point.
	PreferEndpoint bool

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with the standard 100 m tolerance and
// orthogonal (non-endpoint) snapping.
func DefaultOptions() Options {
	return Options{Tolerance: 100}
}

// WithTolerance sets the snap tolerance in metres. Non-positive values are
// an option violation.
func WithTolerance(m float64) Option {
	return func(o *Options) {
		if m <= 0 {
			o.err = ErrOptionViolation
			return
		}
		o.Tolerance = m
	}
}

// WithPreferEndpoint enables the endpoint snapping policy.
func WithPreferEndpoint() Option {
	return func(o *Options) { o.PreferEndpoint = true }
}
