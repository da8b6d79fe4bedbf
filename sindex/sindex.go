// Package sindex provides the 2-D bounding-box index used to find candidate
// flowlines near a point. Rectangles are indexed by ordinal position (the
// order they were supplied in), not by lineID: callers translate ordinals
// back through their own tables.
//
// The index is deterministic: identical input produces identical query
// results, and Ordinals returns hits in ascending ordinal order so that
// downstream tie-breaks stay total.
package sindex

import (
	"errors"

	"github.com/tidwall/rtree"
)

// ErrBadWindow indicates a query window with inverted extents.
var ErrBadWindow = errors.New("sindex: window min exceeds max")

// Index is an immutable R-tree over bounding rectangles.
type Index struct {
	tr rtree.RTreeG[int]
	n  int
}

// New builds an index over boxes, each (xmin, ymin, xmax, ymax). The box at
// position i is reported as ordinal i. Build order is fixed by the input, so
// the structure is reproducible for identical input.
//
// Complexity: O(n log n).
func New(boxes [][4]float64) *Index {
	ix := &Index{n: len(boxes)}
	for i, b := range boxes {
		ix.tr.Insert([2]float64{b[0], b[1]}, [2]float64{b[2], b[3]}, i)
	}

	return ix
}

// Len returns the number of indexed rectangles.
func (ix *Index) Len() int { return ix.n }

// Search visits the ordinal of every rectangle intersecting window,
// stopping early when fn returns false. Visit order is an implementation
// detail; use Ordinals when order matters.
func (ix *Index) Search(window [4]float64, fn func(pos int) bool) error {
	if window[0] > window[2] || window[1] > window[3] {
		return ErrBadWindow
	}
	ix.tr.Search(
		[2]float64{window[0], window[1]},
		[2]float64{window[2], window[3]},
		func(_, _ [2]float64, pos int) bool { return fn(pos) },
	)

	return nil
}

// Ordinals returns the ordinals of every rectangle intersecting window,
// sorted ascending.
func (ix *Index) Ordinals(window [4]float64) ([]int, error) {
	var hits []int
	if err := ix.Search(window, func(pos int) bool {
		hits = append(hits, pos)
		return true
	}); err != nil {
		return nil, err
	}
	// rtree reports in tree order; normalize for total tie-breaks.
	insertionSort(hits)

	return hits, nil
}

// insertionSort keeps the hot path allocation-free; candidate sets are tiny
// (a handful of lines inside a 2xT window).
func insertionSort(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
