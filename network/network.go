// Package network partitions the rewired flowline graph into functional
// networks: maximal upstream-connected sets of segments bounded below by a
// root (an origin or a barrier segment) and above by barriers or
// headwaters. It then aggregates per-network statistics and derives the
// per-barrier connectivity metrics.
package network

import (
	"fmt"
	"sort"

	"github.com/hydrographics/streamnet/nhd"
)

// walker carries the state of the upstream traversal.
type walker struct {
	adjacency  map[uint32][]uint32
	membership map[uint32]uint32
	networks   map[uint32][]uint32
	queue      []uint32
}

// Build computes functional networks and their statistics from the rewired
// tables. floodplain maps NHDPlusID to per-catchment floodplain areas and
// may be nil; missing entries contribute zero to the floodplain sums.
//
// Network IDs equal the root segment's lineID. Roots are the barrier
// segments (upstream sides of barrier joins) plus the origin roots: segments
// with no segment below them, either because their downstream join carries
// the sentinel or because nothing flows out of them. Traversal walks
// upstream from each root and stops at (without crossing) barrier segments,
// which are excluded from the adjacency. A visited set guards braided
// reaches, so a segment joins at most one network; when braids connect two
// root trees, the earlier root (origins before barriers, lowest ID first)
// keeps the segment.
func Build(lines *nhd.FlowlineTable, joins *nhd.JoinTable, barrierJoins []nhd.BarrierJoin, floodplain map[uint64]nhd.FloodplainStats) (*Result, error) {
	if lines == nil {
		return nil, ErrNilLines
	}
	if joins == nil {
		return nil, ErrNilJoins
	}
	if err := nhd.ValidateTables(lines, joins); err != nil {
		return nil, err
	}

	// Barrier segments: the upstream side of every barrier join. Each acts
	// as a network root and as a stop for every other traversal.
	barrierSegs := make(map[uint32]struct{}, len(barrierJoins))
	for _, bj := range barrierJoins {
		if bj.UpstreamID != nhd.Sentinel {
			if !lines.Has(bj.UpstreamID) {
				return nil, fmt.Errorf("%w: upstream_id %d (barrier %d)", ErrUnknownSegment, bj.UpstreamID, bj.BarrierID)
			}
			barrierSegs[bj.UpstreamID] = struct{}{}
		}
		if bj.DownstreamID != nhd.Sentinel && !lines.Has(bj.DownstreamID) {
			return nil, fmt.Errorf("%w: downstream_id %d (barrier %d)", ErrUnknownSegment, bj.DownstreamID, bj.BarrierID)
		}
	}

	w := &walker{
		adjacency:  upstreamAdjacency(joins, barrierSegs),
		membership: make(map[uint32]uint32),
		networks:   make(map[uint32][]uint32),
	}

	for _, root := range originRoots(joins, lines, barrierSegs) {
		w.traverse(root)
	}
	barrierRoots := make([]uint32, 0, len(barrierSegs))
	for id := range barrierSegs {
		barrierRoots = append(barrierRoots, id)
	}
	sort.Slice(barrierRoots, func(a, b int) bool { return barrierRoots[a] < barrierRoots[b] })
	for _, root := range barrierRoots {
		w.traverse(root)
	}

	for id := range w.networks {
		sort.Slice(w.networks[id], func(a, b int) bool { return w.networks[id][a] < w.networks[id][b] })
	}

	res := &Result{Membership: w.membership, Networks: w.networks}
	res.Stats = networkStats(lines, w.networks, floodplain)
	res.Barriers = barrierMetrics(res, barrierJoins)

	return res, nil
}

// upstreamAdjacency maps each segment to its upstream neighbours, dropping
// rows with a sentinel endpoint and rows whose upstream side is a barrier
// segment. The exclusion is what makes barriers stop conditions: a barrier
// segment is reachable only as a root, never by traversal.
func upstreamAdjacency(joins *nhd.JoinTable, barrierSegs map[uint32]struct{}) map[uint32][]uint32 {
	adjacency := make(map[uint32][]uint32)
	joins.Each(func(_ int, j *nhd.Join) bool {
		if j.UpstreamID == nhd.Sentinel || j.DownstreamID == nhd.Sentinel {
			return true
		}
		if _, barrier := barrierSegs[j.UpstreamID]; barrier {
			return true
		}
		adjacency[j.DownstreamID] = append(adjacency[j.DownstreamID], j.UpstreamID)
		return true
	})

	return adjacency
}

// originRoots finds the segments with nothing below them: the upstream side
// of terminal joins, and segments that receive flow but are nobody's
// upstream (dangling outlets, including lines the cutter left as the
// downstream-most part of the region). Barrier segments are excluded; they
// root their own networks. The result is sorted ascending.
func originRoots(joins *nhd.JoinTable, lines *nhd.FlowlineTable, barrierSegs map[uint32]struct{}) []uint32 {
	rootSet := make(map[uint32]struct{})
	joins.Each(func(_ int, j *nhd.Join) bool {
		if j.DownstreamID == nhd.Sentinel {
			if j.UpstreamID != nhd.Sentinel {
				rootSet[j.UpstreamID] = struct{}{}
			}
			return true
		}
		if !joins.HasUpstream(j.DownstreamID) && lines.Has(j.DownstreamID) {
			rootSet[j.DownstreamID] = struct{}{}
		}
		return true
	})
	for id := range barrierSegs {
		delete(rootSet, id)
	}

	roots := make([]uint32, 0, len(rootSet))
	for id := range rootSet {
		roots = append(roots, id)
	}
	sort.Slice(roots, func(a, b int) bool { return roots[a] < roots[b] })

	return roots
}

// traverse runs a breadth-first upstream walk from root, claiming every
// unclaimed segment it reaches. A root already claimed by an earlier
// network is skipped outright.
func (w *walker) traverse(root uint32) {
	if _, claimed := w.membership[root]; claimed {
		return
	}
	w.queue = w.queue[:0]
	w.enqueue(root, root)

	for len(w.queue) > 0 {
		cur := w.queue[0]
		w.queue = w.queue[1:]
		for _, up := range w.adjacency[cur] {
			if _, claimed := w.membership[up]; claimed {
				continue
			}
			w.enqueue(up, root)
		}
	}
}

// enqueue claims id for network root and schedules its upstream expansion.
func (w *walker) enqueue(id, root uint32) {
	w.membership[id] = root
	w.networks[root] = append(w.networks[root], id)
	w.queue = append(w.queue, id)
}
