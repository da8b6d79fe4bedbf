package sindex_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hydrographics/streamnet/sindex"
)

func boxes() [][4]float64 {
	return [][4]float64{
		{0, 0, 10, 10},
		{5, 5, 15, 15},
		{100, 100, 110, 110},
		{-20, -20, -10, -10},
	}
}

// TestOrdinals_WindowHits verifies intersection semantics and ascending
// ordinal order.
func TestOrdinals_WindowHits(t *testing.T) {
	ix := sindex.New(boxes())
	hits, err := ix.Ordinals([4]float64{8, 8, 12, 12})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(hits, want) {
		t.Errorf("hits = %v; want %v", hits, want)
	}
}

// TestOrdinals_NoHits returns an empty result away from every box.
func TestOrdinals_NoHits(t *testing.T) {
	ix := sindex.New(boxes())
	hits, err := ix.Ordinals([4]float64{50, 50, 60, 60})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v; want none", hits)
	}
}

// TestOrdinals_TouchingEdge counts rectangles sharing only a boundary.
func TestOrdinals_TouchingEdge(t *testing.T) {
	ix := sindex.New(boxes())
	hits, err := ix.Ordinals([4]float64{110, 110, 120, 120})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2}; !reflect.DeepEqual(hits, want) {
		t.Errorf("hits = %v; want %v", hits, want)
	}
}

// TestSearch_EarlyStop verifies fn can stop the scan.
func TestSearch_EarlyStop(t *testing.T) {
	ix := sindex.New(boxes())
	count := 0
	if err := ix.Search([4]float64{-100, -100, 200, 200}, func(int) bool {
		count++
		return false
	}); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("visited %d; want 1", count)
	}
}

// TestBadWindow rejects inverted extents.
func TestBadWindow(t *testing.T) {
	ix := sindex.New(boxes())
	if _, err := ix.Ordinals([4]float64{10, 0, 0, 10}); !errors.Is(err, sindex.ErrBadWindow) {
		t.Errorf("want ErrBadWindow, got %v", err)
	}
}

// TestDeterminism: identical input yields identical query output.
func TestDeterminism(t *testing.T) {
	window := [4]float64{-50, -50, 120, 120}
	a, _ := sindex.New(boxes()).Ordinals(window)
	b, _ := sindex.New(boxes()).Ordinals(window)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("query results differ: %v vs %v", a, b)
	}
}
