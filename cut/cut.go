// SPDX-License-Identifier: MIT
//
// File: cut.go
// Role: split flowlines at interior barrier positions, allocate new segment
// IDs, rewire the join graph, and emit the barrier-join table.
//
// The pass is a pure transformation: inputs are validated up front and never
// mutated; every output table is freshly built. Endpoint classification uses
// the fixed EPS threshold so barriers sitting on segment ends reuse the
// existing graph instead of producing degenerate cuts.

package cut

import (
	"fmt"
	"sort"

	"github.com/hydrographics/streamnet/geometry"
	"github.com/hydrographics/streamnet/nhd"
)

// placement is one barrier located on its line by curvilinear position.
type placement struct {
	barrierID uint32
	pos       float64
}

// cutter carries the mutable state of one cutting pass.
type cutter struct {
	lines *nhd.FlowlineTable
	joins *nhd.JoinTable

	nextID uint32

	// interior splits grouped by the line they cut
	splits map[uint32][]placement
	// barrier-join rows still expressed in original lineID space
	pending []nhd.BarrierJoin
	// barrier-join rows already expressed in new-segment space
	settled []nhd.BarrierJoin

	newLines  []nhd.Flowline
	newJoins  []nhd.Join
	downRemap map[uint32]uint32 // split line -> upstream-most sub-segment
	upRemap   map[uint32]uint32 // split line -> downstream-most sub-segment
}

// Flowlines cuts barriers into the flowline graph. Each barrier must carry
// the lineID it snapped to; barriers referencing unknown lines abort with
// ErrConsistency before any output is built. A line with zero barriers
// passes through unchanged, and an empty barrier set returns tables equal
// to the inputs.
func Flowlines(lines *nhd.FlowlineTable, joins *nhd.JoinTable, barriers []nhd.Barrier, opts ...Option) (*Result, error) {
	if lines == nil {
		return nil, ErrNilLines
	}
	if joins == nil {
		return nil, ErrNilJoins
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if err := nhd.ValidateTables(lines, joins); err != nil {
		return nil, err
	}

	nextID := o.NextSegmentID
	if nextID == nhd.Sentinel {
		nextID = lines.MaxLineID() + 1
	} else if nextID <= lines.MaxLineID() {
		return nil, fmt.Errorf("%w: %d <= %d", ErrSegmentIDRange, nextID, lines.MaxLineID())
	}

	c := &cutter{
		lines:     lines,
		joins:     joins,
		nextID:    nextID,
		splits:    make(map[uint32][]placement),
		downRemap: make(map[uint32]uint32),
		upRemap:   make(map[uint32]uint32),
	}

	for i := range barriers {
		if err := c.classify(&barriers[i]); err != nil {
			return nil, err
		}
	}
	if err := c.split(); err != nil {
		return nil, err
	}

	return c.assemble()
}

// classify places one barrier on its line: within EPS of either end it
// attaches to the existing graph, otherwise it is queued as an interior
// split of that line.
func (c *cutter) classify(b *nhd.Barrier) error {
	line, ok := c.lines.Get(b.LineID)
	if !ok {
		return fmt.Errorf("%w: barrier %d references unknown flowline %d", ErrConsistency, b.BarrierID, b.LineID)
	}
	pos, err := geometry.Project(line.Geom, b.Geom)
	if err != nil {
		return fmt.Errorf("%w: barrier %d on flowline %d: %v", ErrConsistency, b.BarrierID, b.LineID, err)
	}
	if pos < 0 {
		return fmt.Errorf("%w: barrier %d projects to %g on flowline %d", ErrConsistency, b.BarrierID, pos, b.LineID)
	}
	length := geometry.Length(line.Geom)

	switch {
	case pos <= EPS:
		// Upstream endpoint: downstream side is the line itself, upstream
		// side is every neighbour joining into it (possibly several at a
		// confluence), or the sentinel when the line is a headwater.
		ups := c.joins.Upstreams(line.LineID)
		if len(ups) == 0 {
			c.pending = append(c.pending, nhd.BarrierJoin{BarrierID: b.BarrierID, UpstreamID: nhd.Sentinel, DownstreamID: line.LineID})
			return nil
		}
		for _, j := range ups {
			c.pending = append(c.pending, nhd.BarrierJoin{BarrierID: b.BarrierID, UpstreamID: j.UpstreamID, DownstreamID: line.LineID})
		}

	case pos >= length-EPS:
		// Downstream endpoint: mirror image of the upstream case.
		downs := c.joins.Downstreams(line.LineID)
		if len(downs) == 0 {
			c.pending = append(c.pending, nhd.BarrierJoin{BarrierID: b.BarrierID, UpstreamID: line.LineID, DownstreamID: nhd.Sentinel})
			return nil
		}
		for _, j := range downs {
			c.pending = append(c.pending, nhd.BarrierJoin{BarrierID: b.BarrierID, UpstreamID: line.LineID, DownstreamID: j.DownstreamID})
		}

	default:
		c.splits[line.LineID] = append(c.splits[line.LineID], placement{barrierID: b.BarrierID, pos: pos})
	}

	return nil
}

// split cuts every line with interior barriers, moving upstream end to
// downstream end, and records the remap of the original line onto its
// first and last sub-segments. Lines are processed in ascending lineID
// order so segment ID allocation is reproducible.
func (c *cutter) split() error {
	ids := make([]uint32, 0, len(c.splits))
	for id := range c.splits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	for _, lineID := range ids {
		if err := c.splitLine(lineID, c.splits[lineID]); err != nil {
			return err
		}
	}

	return nil
}

func (c *cutter) splitLine(lineID uint32, placements []placement) error {
	line, _ := c.lines.Get(lineID)

	// Order barriers from upstream end to downstream end; coincident
	// positions break on barrier ID so the ordering is total.
	sort.Slice(placements, func(a, b int) bool {
		if placements[a].pos != placements[b].pos {
			return placements[a].pos < placements[b].pos
		}
		return placements[a].barrierID < placements[b].barrierID
	})
	positions := make([]float64, len(placements))
	for i, p := range placements {
		positions[i] = p.pos
		if i > 0 && p.pos < positions[i-1] {
			return fmt.Errorf("%w: non-monotonic split positions on flowline %d", ErrConsistency, lineID)
		}
	}

	parts, err := geometry.CutAtDistances(line.Geom, positions)
	if err != nil {
		return fmt.Errorf("%w: flowline %d: %v", ErrConsistency, lineID, err)
	}

	// Allocate IDs upstream to downstream and materialize sub-segments,
	// inheriting identity and classification from the parent line.
	subIDs := make([]uint32, len(parts))
	for i, part := range parts {
		id := c.nextID
		c.nextID++
		subIDs[i] = id
		c.newLines = append(c.newLines, nhd.Flowline{
			LineID:      id,
			NHDPlusID:   line.NHDPlusID,
			Geom:        part,
			Length:      geometry.Length(part),
			Sinuosity:   geometry.Sinuosity(part),
			SizeClass:   line.SizeClass,
			StreamOrder: line.StreamOrder,
			Loop:        line.Loop,
		})
	}

	// Internal joins stitch consecutive sub-segments back together; both
	// external IDs carry the parent's NHDPlusID.
	for i := 0; i+1 < len(subIDs); i++ {
		c.newJoins = append(c.newJoins, nhd.Join{
			UpstreamID:   subIDs[i],
			DownstreamID: subIDs[i+1],
			Upstream:     line.NHDPlusID,
			Downstream:   line.NHDPlusID,
			Type:         nhd.JoinInternal,
		})
	}

	// One barrier-join row per cut, straddling the consecutive pair.
	for i, p := range placements {
		c.settled = append(c.settled, nhd.BarrierJoin{
			BarrierID:    p.barrierID,
			UpstreamID:   subIDs[i],
			DownstreamID: subIDs[i+1],
		})
	}

	c.downRemap[lineID] = subIDs[0]
	c.upRemap[lineID] = subIDs[len(subIDs)-1]

	return nil
}

// assemble builds the output tables: pass-through lines plus sub-segments,
// remapped joins plus internal joins, and the deduplicated barrier-join
// rows.
func (c *cutter) assemble() (*Result, error) {
	outLines := make([]nhd.Flowline, 0, c.lines.Len()+len(c.newLines))
	c.lines.Each(func(_ int, fl *nhd.Flowline) bool {
		if _, wasSplit := c.downRemap[fl.LineID]; !wasSplit {
			outLines = append(outLines, *fl)
		}
		return true
	})
	outLines = append(outLines, c.newLines...)
	flowlines, err := nhd.NewFlowlineTable(outLines, nhd.WithZeroLength())
	if err != nil {
		return nil, err
	}

	outJoins := make([]nhd.Join, 0, c.joins.Len()+len(c.newJoins))
	c.joins.Each(func(_ int, j *nhd.Join) bool {
		row := *j
		if first, ok := c.downRemap[row.DownstreamID]; ok {
			row.DownstreamID = first
		}
		if last, ok := c.upRemap[row.UpstreamID]; ok {
			row.UpstreamID = last
		}
		outJoins = append(outJoins, row)
		return true
	})
	outJoins = append(outJoins, c.newJoins...)
	joins, err := nhd.NewJoinTable(outJoins)
	if err != nil {
		return nil, err
	}

	// Endpoint rows were recorded against original lineIDs; redirect them
	// onto the sub-segments the same way the joins were.
	rows := make([]nhd.BarrierJoin, 0, len(c.pending)+len(c.settled))
	for _, bj := range c.pending {
		if last, ok := c.upRemap[bj.UpstreamID]; ok {
			bj.UpstreamID = last
		}
		if first, ok := c.downRemap[bj.DownstreamID]; ok {
			bj.DownstreamID = first
		}
		rows = append(rows, bj)
	}
	rows = append(rows, c.settled...)
	rows = dedupBarrierJoins(rows)

	return &Result{Flowlines: flowlines, Joins: joins, BarrierJoins: rows}, nil
}

// dedupBarrierJoins sorts rows by (barrier, upstream, downstream) and drops
// exact duplicates: a barrier is referenced by at most one row per segment
// pair.
func dedupBarrierJoins(rows []nhd.BarrierJoin) []nhd.BarrierJoin {
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].BarrierID != rows[b].BarrierID {
			return rows[a].BarrierID < rows[b].BarrierID
		}
		if rows[a].UpstreamID != rows[b].UpstreamID {
			return rows[a].UpstreamID < rows[b].UpstreamID
		}
		return rows[a].DownstreamID < rows[b].DownstreamID
	})

	out := rows[:0]
	for i, r := range rows {
		if i > 0 && r == rows[i-1] {
			continue
		}
		out = append(out, r)
	}

	return out
}
