// SPDX-License-Identifier: MIT
//
// File: tables.go
// Role: typed, validated containers for the flowline and join tables.
//
// Both tables validate on construction and are immutable afterwards. The
// cutter builds fresh tables instead of editing these, which keeps every
// downstream consumer free of aliasing concerns.

package nhd

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// FlowlineTable holds flowlines in a stable order with O(1) lookup by
// lineID. The slice order defines the ordinal positions used by the spatial
// index, so it must not be reordered after construction.
type FlowlineTable struct {
	lines []Flowline
	byID  map[uint32]int
}

// TableOption tunes flowline-table validation.
type TableOption func(*tableConfig)

type tableConfig struct {
	allowZeroLength bool
}

// WithZeroLength permits zero-length segments with coincident endpoints.
// The cutter uses this for its output: two barriers projecting to the same
// position on one line legitimately produce a zero-length micro-segment
// between them. Ingested tables never set it.
func WithZeroLength() TableOption {
	return func(c *tableConfig) { c.allowZeroLength = true }
}

// NewFlowlineTable validates lines and wraps them in a table.
// Returns an error wrapping ErrValidation (and a specific sentinel) on the
// first violated invariant; the input slice is not retained on failure.
//
// Complexity: O(n) time, O(n) extra memory for the ID map.
func NewFlowlineTable(lines []Flowline, opts ...TableOption) (*FlowlineTable, error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	byID := make(map[uint32]int, len(lines))
	for i, fl := range lines {
		if fl.LineID == Sentinel {
			return nil, fmt.Errorf("%w: %w (ordinal %d)", ErrValidation, ErrZeroLineID, i)
		}
		if _, dup := byID[fl.LineID]; dup {
			return nil, fmt.Errorf("%w: %w (lineID %d)", ErrValidation, ErrDuplicateLineID, fl.LineID)
		}
		if degenerate(fl.Geom) && !(cfg.allowZeroLength && len(fl.Geom) >= 2) {
			return nil, fmt.Errorf("%w: %w (lineID %d)", ErrValidation, ErrBadGeometry, fl.LineID)
		}
		if fl.Length <= 0 && !(cfg.allowZeroLength && fl.Length == 0) {
			return nil, fmt.Errorf("%w: %w (lineID %d)", ErrValidation, ErrBadLength, fl.LineID)
		}
		if fl.Sinuosity < 1 {
			return nil, fmt.Errorf("%w: %w (lineID %d)", ErrValidation, ErrBadSinuosity, fl.LineID)
		}
		byID[fl.LineID] = i
	}

	return &FlowlineTable{lines: lines, byID: byID}, nil
}

// degenerate reports whether a linestring has fewer than two distinct
// coordinates. Closed loops (first == last with interior points) are fine.
func degenerate(ls orb.LineString) bool {
	if len(ls) < 2 {
		return true
	}
	for _, p := range ls[1:] {
		if p != ls[0] {
			return false
		}
	}

	return true
}

// Len returns the number of flowlines.
func (t *FlowlineTable) Len() int { return len(t.lines) }

// At returns the flowline at ordinal position i.
func (t *FlowlineTable) At(i int) *Flowline { return &t.lines[i] }

// Get returns the flowline with the given lineID, if present.
func (t *FlowlineTable) Get(id uint32) (*Flowline, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}

	return &t.lines[i], true
}

// Has reports whether id names a flowline in this table.
func (t *FlowlineTable) Has(id uint32) bool {
	_, ok := t.byID[id]
	return ok
}

// MaxLineID returns the largest lineID in the table, or 0 for an empty one.
func (t *FlowlineTable) MaxLineID() uint32 {
	var max uint32
	for id := range t.byID {
		if id > max {
			max = id
		}
	}

	return max
}

// Each calls fn for every flowline in ordinal order, stopping early when fn
// returns false.
func (t *FlowlineTable) Each(fn func(i int, fl *Flowline) bool) {
	for i := range t.lines {
		if !fn(i, &t.lines[i]) {
			return
		}
	}
}

// SortedIDs returns all lineIDs in ascending order. Used wherever iteration
// order must be total for reproducible output.
func (t *FlowlineTable) SortedIDs() []uint32 {
	ids := make([]uint32, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	return ids
}

// joinKey identifies a join row for duplicate detection.
type joinKey struct{ up, down uint32 }

// JoinTable holds join rows in a stable order.
type JoinTable struct {
	joins []Join
	// ups caches the set of all nonzero upstream IDs; the network builder
	// uses it to find dangling terminal segments.
	ups map[uint32]struct{}
}

// NewJoinTable validates rows and wraps them in a table. Duplicate
// (upstream_id, downstream_id) pairs and (0,0) rows are rejected.
func NewJoinTable(joins []Join) (*JoinTable, error) {
	keys := make(map[joinKey]struct{}, len(joins))
	ups := make(map[uint32]struct{}, len(joins))
	for i, j := range joins {
		if j.UpstreamID == Sentinel && j.DownstreamID == Sentinel {
			return nil, fmt.Errorf("%w: %w (row %d)", ErrValidation, ErrEmptyJoin, i)
		}
		k := joinKey{j.UpstreamID, j.DownstreamID}
		if _, dup := keys[k]; dup {
			return nil, fmt.Errorf("%w: %w (%d -> %d)", ErrValidation, ErrDuplicateJoin, j.UpstreamID, j.DownstreamID)
		}
		keys[k] = struct{}{}
		if j.UpstreamID != Sentinel {
			ups[j.UpstreamID] = struct{}{}
		}
	}

	return &JoinTable{joins: joins, ups: ups}, nil
}

// Len returns the number of join rows.
func (t *JoinTable) Len() int { return len(t.joins) }

// At returns the join row at position i.
func (t *JoinTable) At(i int) *Join { return &t.joins[i] }

// Each calls fn for every join row in order, stopping early when fn returns
// false.
func (t *JoinTable) Each(fn func(i int, j *Join) bool) {
	for i := range t.joins {
		if !fn(i, &t.joins[i]) {
			return
		}
	}
}

// HasUpstream reports whether id appears as the upstream side of any row.
func (t *JoinTable) HasUpstream(id uint32) bool {
	_, ok := t.ups[id]
	return ok
}

// Upstreams returns the rows whose downstream side is id, in table order.
func (t *JoinTable) Upstreams(id uint32) []Join {
	var out []Join
	for _, j := range t.joins {
		if j.DownstreamID == id {
			out = append(out, j)
		}
	}

	return out
}

// Downstreams returns the rows whose upstream side is id, in table order.
func (t *JoinTable) Downstreams(id uint32) []Join {
	var out []Join
	for _, j := range t.joins {
		if j.UpstreamID == id {
			out = append(out, j)
		}
	}

	return out
}

// ValidateTables cross-checks a join table against a flowline table: every
// nonzero join endpoint must name a flowline. The cutter calls this before
// any mutation so a violated invariant aborts the run untouched.
func ValidateTables(lines *FlowlineTable, joins *JoinTable) error {
	var err error
	joins.Each(func(_ int, j *Join) bool {
		if j.UpstreamID != Sentinel && !lines.Has(j.UpstreamID) {
			err = fmt.Errorf("%w: %w (upstream_id %d)", ErrValidation, ErrUnknownLineID, j.UpstreamID)
			return false
		}
		if j.DownstreamID != Sentinel && !lines.Has(j.DownstreamID) {
			err = fmt.Errorf("%w: %w (downstream_id %d)", ErrValidation, ErrUnknownLineID, j.DownstreamID)
			return false
		}

		return true
	})

	return err
}
