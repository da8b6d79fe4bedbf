package region_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hydrographics/streamnet/geometry"
	"github.com/hydrographics/streamnet/network"
	"github.com/hydrographics/streamnet/nhd"
	"github.com/hydrographics/streamnet/region"
)

func line(id uint32, nhdID uint64, pts ...orb.Point) nhd.Flowline {
	ls := orb.LineString(pts)
	return nhd.Flowline{
		LineID:    id,
		NHDPlusID: nhdID,
		Geom:      ls,
		Length:    geometry.Length(ls),
		Sinuosity: geometry.Sinuosity(ls),
		SizeClass: nhd.Size2,
	}
}

func testData(t *testing.T, id string) region.Data {
	t.Helper()
	lines, err := nhd.NewFlowlineTable([]nhd.Flowline{
		line(1, 500, orb.Point{0, 0}, orb.Point{100, 0}),
	})
	require.NoError(t, err)
	joins, err := nhd.NewJoinTable([]nhd.Join{
		{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin},
	})
	require.NoError(t, err)

	return region.Data{
		ID:        id,
		Flowlines: lines,
		Joins:     joins,
		Barriers: []nhd.Barrier{
			{BarrierID: 10, Geom: orb.Point{40, 2}, Kind: nhd.KindDam},
			{BarrierID: 11, Geom: orb.Point{50, 400}, Kind: nhd.KindDam},     // beyond tolerance
			{BarrierID: 12, Geom: orb.Point{60, 0}, Kind: nhd.KindSmallBarrier}, // kind disabled
		},
	}
}

// TestRun_EndToEnd drives the whole pipeline: one dam snaps and splits the
// line, the far barrier misses, the disabled kind is filtered, and the gain
// is the upstream side.
func TestRun_EndToEnd(t *testing.T) {
	cfg := region.DefaultConfig()
	cfg.NextSegmentID = 1001

	res, err := region.Run(context.Background(), testData(t, "06"), cfg, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, res.Snapped, 1)
	require.Equal(t, uint32(10), res.Snapped[0].BarrierID)
	require.InDelta(t, 2, res.Snapped[0].SnapDist, 1e-9)

	require.Equal(t, 2, res.Flowlines.Len())
	require.Equal(t, []nhd.BarrierJoin{{BarrierID: 10, UpstreamID: 1001, DownstreamID: 1002}}, res.BarrierJoins)

	require.Len(t, res.Networks.Barriers, 1)
	m := res.Networks.Barriers[0]
	require.InDelta(t, 40*network.MetersToMiles, m.UpstreamMiles, 1e-6)
	require.InDelta(t, 60*network.MetersToMiles, m.DownstreamMiles, 1e-6)
	require.InDelta(t, m.UpstreamMiles, m.AbsoluteGainMi, 1e-9)

	require.Len(t, res.Dissolved, 2)
}

// TestRun_DoesNotMutateInputs: the input tables are unchanged afterwards.
func TestRun_DoesNotMutateInputs(t *testing.T) {
	data := testData(t, "06")
	_, err := region.Run(context.Background(), data, region.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, 1, data.Flowlines.Len())
	require.True(t, data.Flowlines.Has(1))
	require.Equal(t, 1, data.Joins.Len())
	require.Equal(t, uint32(1), data.Joins.At(0).DownstreamID)
	require.Len(t, data.Barriers, 3)
	require.Zero(t, data.Barriers[0].LineID, "snapper must not write back into the input")
}

// TestRunAll fans out over independent regions.
func TestRunAll(t *testing.T) {
	cfg := region.DefaultConfig()
	cfg.Workers = 2

	results, err := region.RunAll(context.Background(),
		[]region.Data{testData(t, "06"), testData(t, "07")}, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, id := range []string{"06", "07"} {
		require.Contains(t, results, id)
		require.Len(t, results[id].Snapped, 1)
	}
}

// TestRun_Cancelled aborts between stages.
func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := region.Run(ctx, testData(t, "06"), region.DefaultConfig(), zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
}

// TestConfig_Validate covers ranges and the always-on waterfall rule.
func TestConfig_Validate(t *testing.T) {
	cfg := region.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Contains(t, cfg.BarrierKinds, nhd.KindWaterfall)

	bad := region.DefaultConfig()
	bad.SnapToleranceM = 0
	require.ErrorIs(t, bad.Validate(), region.ErrConfig)

	unknown := region.DefaultConfig()
	unknown.BarrierKinds = []nhd.BarrierKind{"levee"}
	require.ErrorIs(t, unknown.Validate(), region.ErrConfig)

	noWf := region.DefaultConfig()
	noWf.BarrierKinds = []nhd.BarrierKind{nhd.KindDam}
	require.NoError(t, noWf.Validate())
	require.Contains(t, noWf.BarrierKinds, nhd.KindWaterfall)
}

// TestLoadConfig reads YAML over the defaults.
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	payload := "snap_tolerance_m: 50\nbarrier_kinds: [dam, small_barrier]\nworkers: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	cfg, err := region.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 50.0, cfg.SnapToleranceM)
	require.Equal(t, 3, cfg.Workers)
	require.Contains(t, cfg.BarrierKinds, nhd.KindWaterfall)
	require.Contains(t, cfg.BarrierKinds, nhd.KindSmallBarrier)
	// defaults survive for omitted keys
	require.Equal(t, 10.0, cfg.DuplicateToleranceM)
}
