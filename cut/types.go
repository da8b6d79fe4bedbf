// Package cut provides options and error definitions for splitting
// flowlines at barrier positions and rewiring the join graph.
package cut

import (
	"errors"

	"github.com/hydrographics/streamnet/nhd"
)

// EPS is the endpoint classification threshold in metres: a barrier
// projecting within EPS of a line end is treated as sitting on that end and
// does not cut the line.
const EPS = 1.0

// Sentinel errors for cutting.
var (
	// ErrNilLines is returned if a nil flowline table is passed.
	ErrNilLines = errors.New("cut: flowline table is nil")

	// ErrNilJoins is returned if a nil join table is passed.
	ErrNilJoins = errors.New("cut: join table is nil")

	// ErrConsistency is returned for fatal barrier/flowline inconsistencies:
	// a barrier assigned to a lineID not in the table, a negative projected
	// position, or non-monotonic split positions after sorting.
	ErrConsistency = errors.New("cut: barrier/flowline consistency error")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("cut: invalid option supplied")

	// ErrSegmentIDRange is returned when the configured starting segment ID
	// does not exceed every existing lineID.
	ErrSegmentIDRange = errors.New("cut: next segment ID must exceed max existing lineID")
)

// Option configures cutting via functional arguments.
type Option func(*Options)

// Options holds the cutting parameters.
type Options struct {
	// NextSegmentID is the first lineID allocated to newly created
	// sub-segments. Zero selects max(lineID)+1. Region drivers that pack
	// region numbers into the ID space set this explicitly.
	NextSegmentID uint32

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with automatic segment ID allocation.
func DefaultOptions() Options {
	return Options{}
}

// WithNextSegmentID sets the starting ID for newly created segments.
// The sentinel 0 is an option violation; omit the option for automatic
// allocation.
func WithNextSegmentID(id uint32) Option {
	return func(o *Options) {
		if id == nhd.Sentinel {
			o.err = ErrOptionViolation
			return
		}
		o.NextSegmentID = id
	}
}

// Result bundles the outputs of one cutting pass. All three are freshly
// built; the inputs are left untouched.
type Result struct {
	// Flowlines is the rewired flowline table: untouched lines in their
	// original ordinal order followed by new sub-segments in allocation
	// order.
	Flowlines *nhd.FlowlineTable

	// Joins is the rewired join table: original rows with endpoints
	// remapped onto sub-segments, followed by the internal joins inserted
	// between consecutive sub-segments.
	Joins *nhd.JoinTable

	// BarrierJoins records, per barrier, the segment pair immediately
	// upstream and downstream of it, sorted by (barrier, upstream,
	// downstream). Endpoint barriers at a confluence contribute one row per
	// upstream neighbour.
	BarrierJoins []nhd.BarrierJoin
}
