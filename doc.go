// Package streamnet computes the functional aquatic connectivity of stream
// networks fragmented by barriers (dams, waterfalls, road crossings).
//
// Given flowlines with topological join information and point barriers
// located near those lines, the engine:
//
//   - snaps each barrier to its nearest flowline within tolerance,
//   - cuts flowlines where barriers fall inside a segment and rewires the
//     upstream/downstream join graph onto the new sub-segments,
//   - partitions the rewired graph into maximal barrier-bounded functional
//     networks by upstream traversal,
//   - aggregates per-network statistics (length, length-weighted sinuosity,
//     size-class diversity, floodplain naturalness) and derives each
//     barrier's upstream/downstream network metrics.
//
// The work is organized into topic packages:
//
//	nhd/      — data model: flowlines, joins, barriers, validated tables
//	geometry/ — planar measurements and line cutting over paulmach/orb
//	sindex/   — deterministic bounding-box index for candidate lookup
//	snap/     — barrier deduplication and snapping
//	cut/      — flowline splitting and join rewiring
//	network/  — functional network traversal, statistics, barrier metrics
//	nhdio/    — CSV and GeoJSON table IO
//	region/   — per-region pipeline and parallel multi-region fan-out
//
// All spatial inputs must share one planar projection with metre units; the
// engine never reprojects. Within a region the pipeline is single-threaded
// and batch; regions are independent and run in parallel under
// region.RunAll.
package streamnet
