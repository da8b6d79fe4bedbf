// Package snap attaches barrier points to their nearest flowline within a
// tolerance, recording the snap distance and carrying the line's identifiers
// onto the point. Points with no flowline in range are dropped; snapping a
// barrier is expected to fail for features outside the stream network.
package snap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/hydrographics/streamnet/geometry"
	"github.com/hydrographics/streamnet/nhd"
	"github.com/hydrographics/streamnet/sindex"
)

// Points snaps every barrier in barriers onto the nearest flowline within
// tolerance. The index must have been built over the flowline table's
// geometries in ordinal order (see IndexLines).
//
// The result contains one row per snapped barrier, in input order, with
// Geom moved onto the chosen line and LineID, NHDPlusID, SnapDist, Nearby
// and IsEndpoint filled in. Barriers with zero candidates are absent from
// the result. Input records are copied, never mutated.
//
// Processing is order-independent: each point is resolved against the same
// immutable index, and ties on distance break to the lowest ordinal.
func Points(barriers []nhd.Barrier, lines *nhd.FlowlineTable, ix *sindex.Index, opts ...Option) ([]nhd.Barrier, error) {
	if lines == nil {
		return nil, ErrNilLines
	}
	if ix == nil {
		return nil, ErrNilIndex
	}
	if ix.Len() != lines.Len() {
		return nil, ErrIndexMismatch
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	out := make([]nhd.Barrier, 0, len(barriers))
	for _, b := range barriers {
		snapped, ok, err := snapOne(b, lines, ix, o)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, snapped)
		}
	}

	return out, nil
}

// IndexLines builds the spatial index over a flowline table, one bounding
// rectangle per flowline in ordinal order.
func IndexLines(lines *nhd.FlowlineTable) *sindex.Index {
	boxes := make([][4]float64, lines.Len())
	lines.Each(func(i int, fl *nhd.Flowline) bool {
		boxes[i] = geometry.Bounds(fl.Geom)
		return true
	})

	return sindex.New(boxes)
}

// snapOne resolves a single barrier. ok is false on a snap miss.
func snapOne(b nhd.Barrier, lines *nhd.FlowlineTable, ix *sindex.Index, o Options) (nhd.Barrier, bool, error) {
	x, y := b.Geom[0], b.Geom[1]
	window := [4]float64{x - o.Tolerance, y - o.Tolerance, x + o.Tolerance, y + o.Tolerance}
	hits, err := ix.Ordinals(window)
	if err != nil {
		return b, false, err
	}

	// Scan candidates in ordinal order; strict < keeps the lowest ordinal
	// on ties.
	bestOrd := -1
	bestDist := math.Inf(1)
	nearby := 0
	for _, ord := range hits {
		d, derr := geometry.Distance(lines.At(ord).Geom, b.Geom)
		if derr != nil {
			return b, false, derr
		}
		if d > o.Tolerance {
			continue
		}
		nearby++
		if d < bestDist {
			bestDist = d
			bestOrd = ord
		}
	}
	if bestOrd < 0 {
		return b, false, nil
	}

	line := lines.At(bestOrd)
	pt, _, _, err := geometry.ClosestPoint(line.Geom, b.Geom)
	if err != nil {
		return b, false, err
	}
	isEndpoint := false
	if o.PreferEndpoint {
		if ep, ok := nearerEndpoint(line.Geom, b.Geom, o.Tolerance); ok {
			pt = ep
			bestDist = planar.Distance(b.Geom, ep)
			isEndpoint = true
		}
	}

	b.Geom = pt
	b.LineID = line.LineID
	b.NHDPlusID = line.NHDPlusID
	b.SnapDist = bestDist
	b.Nearby = nearby
	b.IsEndpoint = isEndpoint

	return b, true, nil
}

// nearerEndpoint returns the endpoint of ls nearest to p when that endpoint
// is within tolerance of p.
func nearerEndpoint(ls orb.LineString, p orb.Point, tolerance float64) (orb.Point, bool) {
	first, last := ls[0], ls[len(ls)-1]
	df := planar.Distance(p, first)
	dl := planar.Distance(p, last)
	if dl < df {
		first, df = last, dl
	}
	if df <= tolerance {
		return first, true
	}

	return orb.Point{}, false
}
