// Package geometry: linestring measurements and cutting.
package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Sentinel errors for geometry operations.
var (
	// ErrShortLine indicates a linestring with fewer than two coordinates.
	ErrShortLine = errors.New("geometry: linestring needs at least two coordinates")
	// ErrCutOutOfRange indicates a cut position at or beyond the line ends.
	ErrCutOutOfRange = errors.New("geometry: cut position outside line interior")
	// ErrUnsortedCuts indicates a cut position below the one before it.
	// Equal (coincident) positions are accepted.
	ErrUnsortedCuts = errors.New("geometry: cut positions must be ascending")
)

// Bounds returns the bounding rectangle of a linestring as
// (xmin, ymin, xmax, ymax).
func Bounds(ls orb.LineString) [4]float64 {
	b := ls.Bound()
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Length returns the planar length of a linestring in metres.
func Length(ls orb.LineString) float64 {
	return planar.Length(ls)
}

// Sinuosity returns the length of the line divided by the straight-line
// distance between its endpoints, clamped to >= 1. A line whose endpoints
// coincide has no straight-line distance and, by convention, sinuosity 1.
func Sinuosity(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 1
	}
	straight := planar.Distance(ls[0], ls[len(ls)-1])
	if straight <= 0 {
		return 1
	}
	if s := planar.Length(ls) / straight; s > 1 {
		return s
	}

	return 1
}

// ClosestPoint returns the point on ls nearest to p, its curvilinear
// coordinate (distance along ls from the upstream end, metres), and the
// Euclidean distance from p to that point.
//
// Complexity: O(len(ls)).
func ClosestPoint(ls orb.LineString, p orb.Point) (pt orb.Point, along, dist float64, err error) {
	if len(ls) < 2 {
		return orb.Point{}, 0, 0, ErrShortLine
	}

	best := -1.0
	acc := 0.0
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		segLen := planar.Distance(a, b)
		cand, t := closestOnSegment(a, b, p)
		d := planar.Distance(cand, p)
		if best < 0 || d < best {
			best = d
			pt = cand
			along = acc + t*segLen
		}
		acc += segLen
	}

	return pt, along, best, nil
}

// Distance returns the Euclidean distance from p to the nearest point of ls.
func Distance(ls orb.LineString, p orb.Point) (float64, error) {
	_, _, d, err := ClosestPoint(ls, p)
	return d, err
}

// Project returns the curvilinear coordinate of the point of ls nearest to
// p, measured in metres from the upstream end.
func Project(ls orb.LineString, p orb.Point) (float64, error) {
	_, along, _, err := ClosestPoint(ls, p)
	return along, err
}

// Interpolate returns the point of ls at curvilinear coordinate s.
// Coordinates below 0 clamp to the first point; coordinates past the end
// clamp to the last.
func Interpolate(ls orb.LineString, s float64) (orb.Point, error) {
	if len(ls) < 2 {
		return orb.Point{}, ErrShortLine
	}
	if s <= 0 {
		return ls[0], nil
	}

	acc := 0.0
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		segLen := planar.Distance(a, b)
		if acc+segLen >= s && segLen > 0 {
			t := (s - acc) / segLen
			return lerp(a, b, t), nil
		}
		acc += segLen
	}

	return ls[len(ls)-1], nil
}

// CutAt splits ls at curvilinear coordinate s into an upstream and a
// downstream part. When s lands on an existing vertex the parts share that
// vertex; otherwise the interpolated point is inserted into both. The sum of
// the part lengths equals the length of ls.
//
// s must lie strictly inside (0, Length(ls)); positions at or beyond the
// ends return ErrCutOutOfRange (endpoint barriers never reach this code).
func CutAt(ls orb.LineString, s float64) (orb.LineString, orb.LineString, error) {
	if len(ls) < 2 {
		return nil, nil, ErrShortLine
	}
	total := planar.Length(ls)
	if s <= 0 || s >= total {
		return nil, nil, fmt.Errorf("%w: %g of %g", ErrCutOutOfRange, s, total)
	}

	acc := 0.0
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		segLen := planar.Distance(a, b)
		if acc+segLen < s {
			acc += segLen
			continue
		}

		// The cut falls on the segment a-b (or exactly on b).
		t := 0.0
		if segLen > 0 {
			t = (s - acc) / segLen
		}
		if t >= 1 {
			// Exactly on vertex b: split sharing that vertex.
			up := append(orb.LineString{}, ls[:i+1]...)
			down := append(orb.LineString{}, ls[i:]...)
			return up, down, nil
		}
		if t <= 0 {
			// Exactly on vertex a.
			up := append(orb.LineString{}, ls[:i]...)
			down := append(orb.LineString{}, ls[i-1:]...)
			return up, down, nil
		}
		cp := lerp(a, b, t)
		up := append(append(orb.LineString{}, ls[:i]...), cp)
		down := append(orb.LineString{cp}, ls[i:]...)

		return up, down, nil
	}

	// Unreachable for s < total; defend against float drift at the tail.
	return nil, nil, fmt.Errorf("%w: %g of %g", ErrCutOutOfRange, s, total)
}

// CutAtDistances splits ls at every position in ss, which must be ascending
// and strictly interior. Returns len(ss)+1 parts ordered upstream to
// downstream. Coincident positions are allowed and produce zero-length
// middle parts.
func CutAtDistances(ls orb.LineString, ss []float64) ([]orb.LineString, error) {
	if len(ss) == 0 {
		return []orb.LineString{ls}, nil
	}

	parts := make([]orb.LineString, 0, len(ss)+1)
	remainder := ls
	consumed := 0.0
	prev := 0.0
	for _, s := range ss {
		if s < prev {
			return nil, fmt.Errorf("%w: %g after %g", ErrUnsortedCuts, s, prev)
		}
		prev = s

		local := s - consumed
		if local <= 0 {
			// Coincident with the previous cut: emit a zero-length stub at
			// the cut point so every barrier still gets its own segment.
			cp := remainder[0]
			parts = append(parts, orb.LineString{cp, cp})
			continue
		}
		up, down, err := CutAt(remainder, local)
		if err != nil {
			return nil, err
		}
		parts = append(parts, up)
		remainder = down
		consumed = s
	}
	parts = append(parts, remainder)

	return parts, nil
}

// closestOnSegment returns the point of segment a-b nearest to p and the
// parameter t in [0,1] locating it along the segment.
func closestOnSegment(a, b, p orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	den := dx*dx + dy*dy
	if den == 0 {
		return a, 0
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return lerp(a, b, t), t
}

// lerp interpolates between a and b at parameter t.
func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}
