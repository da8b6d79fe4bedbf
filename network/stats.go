// SPDX-License-Identifier: MIT
//
// File: stats.go
// Role: per-network aggregation and per-barrier metric derivation.

package network

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/hydrographics/streamnet/nhd"
)

// networkStats aggregates each network's members. Floodplain areas join by
// NHDPlusID per member segment; segments without a floodplain row
// contribute zero to both sums.
func networkStats(lines *nhd.FlowlineTable, networks map[uint32][]uint32, floodplain map[uint64]nhd.FloodplainStats) []Stats {
	ids := make([]uint32, 0, len(networks))
	for id := range networks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	out := make([]Stats, 0, len(ids))
	for _, netID := range ids {
		members := networks[netID]

		var totalLen, weightedSin, fpTotal, fpNat float64
		classes := make(map[nhd.SizeClass]struct{})
		for _, lineID := range members {
			fl, ok := lines.Get(lineID)
			if !ok {
				continue
			}
			totalLen += fl.Length
			weightedSin += fl.Length * fl.Sinuosity
			classes[fl.SizeClass] = struct{}{}
			if fp, ok := floodplain[fl.NHDPlusID]; ok {
				fpTotal += fp.FloodplainKm2
				fpNat += fp.NatFloodplainKm2
			}
		}

		// Length-weighted mean; a network of zero total length (all
		// micro-segments) is straight by convention.
		sinuosity := 1.0
		if totalLen > 0 {
			sinuosity = weightedSin / totalLen
		}
		pctNat := 0.0
		if fpTotal > 0 {
			pctNat = 100 * fpNat / fpTotal
		}

		out = append(out, Stats{
			NetworkID:         netID,
			TotalLengthM:      totalLen,
			Miles:             totalLen * MetersToMiles,
			Sinuosity:         sinuosity,
			SizeClassesGained: len(classes) - 1,
			PctNatFloodplain:  pctNat,
			SegmentCount:      len(members),
		})
	}

	return out
}

// barrierMetrics derives one metrics row per barrier-join row: the miles
// opened upstream and downstream of the barrier, and the upstream network's
// quality measures. A sentinel on either side yields zeros for that side,
// and the absolute gain falls back to the available side alone when the
// downstream network leaves the region.
func barrierMetrics(res *Result, barrierJoins []nhd.BarrierJoin) []BarrierMetrics {
	byNet := make(map[uint32]*Stats, len(res.Stats))
	for i := range res.Stats {
		byNet[res.Stats[i].NetworkID] = &res.Stats[i]
	}

	out := make([]BarrierMetrics, 0, len(barrierJoins))
	for _, bj := range barrierJoins {
		m := BarrierMetrics{BarrierID: bj.BarrierID}

		if bj.UpstreamID != nhd.Sentinel {
			if st := byNet[bj.UpstreamID]; st != nil {
				m.UpNetID = st.NetworkID
				m.UpstreamMiles = st.Miles
				m.Sinuosity = st.Sinuosity
				m.SizeClassesGained = st.SizeClassesGained
				m.PctNatFloodplain = st.PctNatFloodplain
			}
		}
		if bj.DownstreamID != nhd.Sentinel {
			if netID, ok := res.Membership[bj.DownstreamID]; ok {
				if st := byNet[netID]; st != nil {
					m.DownNetID = netID
					m.DownstreamMiles = st.Miles
				}
			}
		}

		switch {
		case m.UpNetID == 0:
			m.AbsoluteGainMi = m.DownstreamMiles
		case m.DownNetID == 0:
			m.AbsoluteGainMi = m.UpstreamMiles
		default:
			m.AbsoluteGainMi = min(m.UpstreamMiles, m.DownstreamMiles)
		}

		out = append(out, m)
	}

	return out
}

// Dissolve composes each network's member geometries into a multi-line,
// ordered by network ID with members in ascending lineID order.
func Dissolve(lines *nhd.FlowlineTable, res *Result) []Dissolved {
	ids := make([]uint32, 0, len(res.Networks))
	for id := range res.Networks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	out := make([]Dissolved, 0, len(ids))
	for _, netID := range ids {
		members := res.Networks[netID]
		mls := make(orb.MultiLineString, 0, len(members))
		for _, lineID := range members {
			if fl, ok := lines.Get(lineID); ok {
				mls = append(mls, fl.Geom)
			}
		}
		out = append(out, Dissolved{NetworkID: netID, Geom: mls})
	}

	return out
}
