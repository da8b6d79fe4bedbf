// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: record types and enumerations shared by every streamnet stage.

package nhd

import (
	"github.com/paulmach/orb"
)

// Sentinel is the reserved lineID meaning "no segment". It is valid only in
// join endpoints and barrier-join endpoints.
const Sentinel uint32 = 0

// JoinType classifies a join row.
type JoinType string

const (
	// JoinOrigin marks a headwater edge: upstream_id is the sentinel.
	JoinOrigin JoinType = "origin"
	// JoinTerminal marks an outlet edge: downstream_id is the sentinel.
	JoinTerminal JoinType = "terminal"
	// JoinInternal connects two segments inside the region, including the
	// joins inserted by the cutter between split sub-segments.
	JoinInternal JoinType = "internal"
	// JoinHucIn marks flow entering from a neighbouring hydrographic unit.
	JoinHucIn JoinType = "huc_in"
)

// BarrierKind identifies the inventory a barrier came from.
type BarrierKind string

const (
	KindDam          BarrierKind = "dam"
	KindWaterfall    BarrierKind = "waterfall"
	KindSmallBarrier BarrierKind = "small_barrier"
)

// SizeClass is the discrete drainage-area bucket of a flowline. It is
// assigned upstream of this engine and carried through unchanged.
type SizeClass string

// The ordered size-class labels, headwater first.
const (
	Size1a SizeClass = "1a"
	Size1b SizeClass = "1b"
	Size2  SizeClass = "2"
	Size3a SizeClass = "3a"
	Size3b SizeClass = "3b"
	Size4  SizeClass = "4"
	Size5  SizeClass = "5"
)

// Flowline is one directed stream segment. Geometry runs from the upstream
// end to the downstream end in a single planar metre projection.
type Flowline struct {
	// LineID is the run-unique internal identifier. Never Sentinel.
	LineID uint32
	// NHDPlusID is the external identifier. After cutting it is shared by
	// all sub-segments of the original line, so it is not unique.
	NHDPlusID uint64
	// Geom holds at least two distinct coordinates, except in the cutter's
	// zero-length micro-segments (two coincident coordinates; see
	// WithZeroLength).
	Geom orb.LineString
	// Length is the polyline length in metres, > 0 except for those
	// micro-segments, where it is 0.
	Length float64
	// Sinuosity is Length over the straight-line distance between the
	// endpoints, clamped to >= 1.
	Sinuosity float64
	// SizeClass is the drainage-area bucket.
	SizeClass SizeClass
	// StreamOrder is the Strahler order.
	StreamOrder uint8
	// Loop flags braided reaches. Loops are traversed like any other
	// segment; the network walker guards revisits with its visited set.
	Loop bool
}

// Join is one directed edge of the flowline graph: water flows from
// UpstreamID to DownstreamID. Either endpoint may be Sentinel, never both.
type Join struct {
	UpstreamID   uint32
	DownstreamID uint32
	// Upstream and Downstream carry the external NHDPlusID pair. Zero for
	// the sentinel side; the internal joins the cutter inserts between
	// sub-segments carry the parent line's NHDPlusID on both sides.
	Upstream   uint64
	Downstream uint64
	Type       JoinType
}

// Barrier is a point obstruction to be placed onto the flowline graph.
// The snapper fills the placement fields; records that fail to snap are
// dropped and never reach the cutter.
type Barrier struct {
	BarrierID uint32
	Geom      orb.Point
	Kind      BarrierKind

	// Placement, set by the snapper.

	// LineID is the flowline the barrier snapped to.
	LineID uint32
	// NHDPlusID is copied from the snapped flowline.
	NHDPlusID uint64
	// SnapDist is the distance in metres between the original point and the
	// snapped location, always <= the snap tolerance.
	SnapDist float64
	// Nearby counts flowlines within tolerance of the original point.
	Nearby int
	// IsEndpoint is set when the prefer-endpoint policy moved the snap onto
	// a line endpoint.
	IsEndpoint bool
}

// BarrierJoin records the segments immediately upstream and downstream of a
// placed barrier after cutting. Either side may be Sentinel when the barrier
// sits at a network extremity. A barrier at a confluence produces one row
// per upstream neighbour.
type BarrierJoin struct {
	BarrierID    uint32
	UpstreamID   uint32
	DownstreamID uint32
}

// FloodplainStats holds per-NHDPlusID floodplain areas used by the network
// statistics stage. Missing rows contribute zero to the sums.
type FloodplainStats struct {
	NHDPlusID        uint64
	FloodplainKm2    float64
	NatFloodplainKm2 float64
}
