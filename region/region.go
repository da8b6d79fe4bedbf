// SPDX-License-Identifier: MIT
//
// File: region.go
// Role: sequential A->B->C->D pipeline for one region, and the parallel
// fan-out over independent regions.

package region

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hydrographics/streamnet/cut"
	"github.com/hydrographics/streamnet/network"
	"github.com/hydrographics/streamnet/nhd"
	"github.com/hydrographics/streamnet/snap"
)

// Data is one region's self-contained input tuple.
type Data struct {
	// ID names the region (e.g. the HUC code) in logs and result maps.
	ID string

	Flowlines  *nhd.FlowlineTable
	Joins      *nhd.JoinTable
	Barriers   []nhd.Barrier
	Floodplain map[uint64]nhd.FloodplainStats
}

// Results bundles everything one region run produces.
type Results struct {
	// Snapped is the barrier table after dedup and snapping; barriers with
	// no flowline within tolerance are absent.
	Snapped []nhd.Barrier

	// Flowlines and Joins are the rewired tables from cutting.
	Flowlines *nhd.FlowlineTable
	Joins     *nhd.JoinTable

	// BarrierJoins is the barrier-to-segment-pair table.
	BarrierJoins []nhd.BarrierJoin

	// Networks carries membership, per-network stats and per-barrier
	// metrics.
	Networks *network.Result

	// Dissolved composes each network's geometry into a multi-line.
	Dissolved []network.Dissolved
}

// Run executes the pipeline for one region: filter barriers by kind, dedup,
// index, snap, cut, build networks, dissolve. The input tables are never
// mutated. ctx is checked between stages; a cancelled context aborts with
// its error.
func Run(ctx context.Context, data Data, cfg Config, log zerolog.Logger) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = log.With().Str("region", data.ID).Logger()
	start := time.Now()

	barriers := filterKinds(data.Barriers, cfg.BarrierKinds)
	barriers = snap.Dedup(barriers, cfg.DuplicateToleranceM)
	log.Info().
		Int("candidates", len(data.Barriers)).
		Int("after_dedup", len(barriers)).
		Msg("prepared barriers")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix := snap.IndexLines(data.Flowlines)
	snapOpts := []snap.Option{snap.WithTolerance(cfg.SnapToleranceM)}
	if cfg.PreferEndpoint {
		snapOpts = append(snapOpts, snap.WithPreferEndpoint())
	}
	snapped, err := snap.Points(barriers, data.Flowlines, ix, snapOpts...)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("snapped", len(snapped)).
		Int("missed", len(barriers)-len(snapped)).
		Msg("snapped barriers")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cutOpts []cut.Option
	if cfg.NextSegmentID != nhd.Sentinel {
		cutOpts = append(cutOpts, cut.WithNextSegmentID(cfg.NextSegmentID))
	}
	cutRes, err := cut.Flowlines(data.Flowlines, data.Joins, snapped, cutOpts...)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("segments_before", data.Flowlines.Len()).
		Int("segments_after", cutRes.Flowlines.Len()).
		Int("barrier_joins", len(cutRes.BarrierJoins)).
		Msg("cut flowlines")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	netRes, err := network.Build(cutRes.Flowlines, cutRes.Joins, cutRes.BarrierJoins, data.Floodplain)
	if err != nil {
		return nil, err
	}
	dissolved := network.Dissolve(cutRes.Flowlines, netRes)
	log.Info().
		Int("networks", len(netRes.Stats)).
		Dur("elapsed", time.Since(start)).
		Msg("region done")

	return &Results{
		Snapped:      snapped,
		Flowlines:    cutRes.Flowlines,
		Joins:        cutRes.Joins,
		BarrierJoins: cutRes.BarrierJoins,
		Networks:     netRes,
		Dissolved:    dissolved,
	}, nil
}

// RunAll runs every region under a bounded errgroup and collects results by
// region ID. Regions are independent, so the first error cancels the
// remaining ones via the group context.
func RunAll(ctx context.Context, regions []Data, cfg Config, log zerolog.Logger) (map[string]*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	var mu sync.Mutex
	out := make(map[string]*Results, len(regions))
	for _, data := range regions {
		g.Go(func() error {
			res, err := Run(gctx, data, cfg, log)
			if err != nil {
				return err
			}
			mu.Lock()
			out[data.ID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// filterKinds keeps barriers whose kind participates in this run.
func filterKinds(barriers []nhd.Barrier, kinds []nhd.BarrierKind) []nhd.Barrier {
	out := make([]nhd.Barrier, 0, len(barriers))
	for _, b := range barriers {
		if slices.Contains(kinds, b.Kind) {
			out = append(out, b)
		}
	}

	return out
}
