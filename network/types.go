// Package network provides types and error definitions for functional
// network construction and statistics.
package network

import (
	"errors"

	"github.com/paulmach/orb"
)

// MetersToMiles converts metres to statute miles.
const MetersToMiles = 0.000621371

// Sentinel errors for network construction.
var (
	// ErrNilLines is returned if a nil flowline table is passed.
	ErrNilLines = errors.New("network: flowline table is nil")

	// ErrNilJoins is returned if a nil join table is passed.
	ErrNilJoins = errors.New("network: join table is nil")

	// ErrUnknownSegment is returned when a barrier join references a lineID
	// absent from the rewired flowline table. This is a fatal consistency
	// error: the cutter guarantees every barrier-join endpoint it emits.
	ErrUnknownSegment = errors.New("network: barrier join references unknown segment")
)

// Stats aggregates one functional network.
type Stats struct {
	// NetworkID equals the root segment's lineID.
	NetworkID uint32
	// TotalLengthM is the summed segment length in metres.
	TotalLengthM float64
	// Miles is TotalLengthM converted to statute miles.
	Miles float64
	// Sinuosity is the length-weighted mean segment sinuosity, >= 1 for any
	// nonempty network.
	Sinuosity float64
	// SizeClassesGained is the count of distinct size classes minus one:
	// the classes a fish passes through beyond the one it starts in.
	SizeClassesGained int
	// PctNatFloodplain is 100 * natural floodplain area over total
	// floodplain area across the network, 0 when no floodplain data joins.
	PctNatFloodplain float64
	// SegmentCount is the number of member segments.
	SegmentCount int
}

// BarrierMetrics derives the connectivity value of removing one barrier,
// one row per barrier-join row.
type BarrierMetrics struct {
	BarrierID uint32
	// UpNetID is the network rooted at the segment immediately upstream of
	// the barrier, or 0 at a network extremity.
	UpNetID       uint32
	UpstreamMiles float64
	// DownNetID is the network containing the segment immediately
	// downstream, or 0 when the downstream side leaves the region.
	DownNetID       uint32
	DownstreamMiles float64
	// AbsoluteGainMi is the smaller of the two sides; when one side is
	// absent it is the available side alone.
	AbsoluteGainMi float64
	// Sinuosity, SizeClassesGained and PctNatFloodplain carry the upstream
	// network's statistics.
	Sinuosity         float64
	SizeClassesGained int
	PctNatFloodplain  float64
}

// Result bundles the outputs of network construction.
type Result struct {
	// Membership maps every reached lineID to its network ID. A segment
	// belongs to at most one network; segments not reachable from any root
	// (isolated lines with no joins) are absent.
	Membership map[uint32]uint32

	// Networks lists each network's member lineIDs in ascending order,
	// keyed by network ID.
	Networks map[uint32][]uint32

	// Stats holds per-network aggregates sorted by network ID.
	Stats []Stats

	// Barriers holds per-barrier metrics in barrier-join order.
	Barriers []BarrierMetrics
}

// Dissolved is one network's geometry composed into a multi-line.
type Dissolved struct {
	NetworkID uint32
	Geom      orb.MultiLineString
}
