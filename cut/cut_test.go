package cut_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/hydrographics/streamnet/cut"
	"github.com/hydrographics/streamnet/geometry"
	"github.com/hydrographics/streamnet/nhd"
)

func line(id uint32, nhdID uint64, pts ...orb.Point) nhd.Flowline {
	ls := orb.LineString(pts)
	return nhd.Flowline{
		LineID:      id,
		NHDPlusID:   nhdID,
		Geom:        ls,
		Length:      geometry.Length(ls),
		Sinuosity:   geometry.Sinuosity(ls),
		SizeClass:   nhd.Size2,
		StreamOrder: 1,
	}
}

func lines(t *testing.T, fls ...nhd.Flowline) *nhd.FlowlineTable {
	t.Helper()
	tbl, err := nhd.NewFlowlineTable(fls)
	require.NoError(t, err)
	return tbl
}

func joins(t *testing.T, rows ...nhd.Join) *nhd.JoinTable {
	t.Helper()
	tbl, err := nhd.NewJoinTable(rows)
	require.NoError(t, err)
	return tbl
}

func snapped(barrierID, lineID uint32, x, y float64) nhd.Barrier {
	return nhd.Barrier{BarrierID: barrierID, LineID: lineID, Geom: orb.Point{x, y}, Kind: nhd.KindDam}
}

func joinRows(tbl *nhd.JoinTable) []nhd.Join {
	out := make([]nhd.Join, 0, tbl.Len())
	tbl.Each(func(_ int, j *nhd.Join) bool {
		out = append(out, *j)
		return true
	})
	return out
}

// TestSingleInteriorBarrier splits one line into two sub-segments, rewires
// the origin join onto the first, and straddles the barrier across the
// pair.
func TestSingleInteriorBarrier(t *testing.T) {
	f := lines(t, line(1, 500, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})

	res, err := cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 1, 40, 0)}, cut.WithNextSegmentID(1001))
	require.NoError(t, err)

	require.Equal(t, 2, res.Flowlines.Len())
	up, ok := res.Flowlines.Get(1001)
	require.True(t, ok)
	require.InDelta(t, 40, up.Length, 1e-9)
	require.Equal(t, uint64(500), up.NHDPlusID)
	down, ok := res.Flowlines.Get(1002)
	require.True(t, ok)
	require.InDelta(t, 60, down.Length, 1e-9)
	require.False(t, res.Flowlines.Has(1))

	require.Equal(t, []nhd.Join{
		{UpstreamID: 0, DownstreamID: 1001, Type: nhd.JoinOrigin},
		{UpstreamID: 1001, DownstreamID: 1002, Upstream: 500, Downstream: 500, Type: nhd.JoinInternal},
	}, joinRows(res.Joins))

	require.Equal(t, []nhd.BarrierJoin{{BarrierID: 10, UpstreamID: 1001, DownstreamID: 1002}}, res.BarrierJoins)
}

// TestBarrierOnConfluencePoint: a barrier on the shared upstream endpoint
// of a Y-junction emits one row per upstream neighbour and cuts nothing.
func TestBarrierOnConfluencePoint(t *testing.T) {
	f := lines(t,
		line(1, 100, orb.Point{0, 0}, orb.Point{10, 0}),
		line(2, 200, orb.Point{-10, 5}, orb.Point{0, 0}),
		line(3, 300, orb.Point{-10, -5}, orb.Point{0, 0}),
	)
	j := joins(t,
		nhd.Join{UpstreamID: 2, DownstreamID: 1, Upstream: 200, Downstream: 100, Type: nhd.JoinInternal},
		nhd.Join{UpstreamID: 3, DownstreamID: 1, Upstream: 300, Downstream: 100, Type: nhd.JoinInternal},
	)

	res, err := cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 1, 0, 0)})
	require.NoError(t, err)

	require.Equal(t, 3, res.Flowlines.Len())
	require.True(t, res.Flowlines.Has(1))
	require.Equal(t, joinRows(j), joinRows(res.Joins))
	require.Equal(t, []nhd.BarrierJoin{
		{BarrierID: 10, UpstreamID: 2, DownstreamID: 1},
		{BarrierID: 10, UpstreamID: 3, DownstreamID: 1},
	}, res.BarrierJoins)
}

// TestTwoInteriorBarriersOneLine produces three segments, two internal
// joins, and one straddling row per barrier.
func TestTwoInteriorBarriersOneLine(t *testing.T) {
	f := lines(t, line(1, 500, orb.Point{0, 0}, orb.Point{300, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})

	res, err := cut.Flowlines(f, j,
		[]nhd.Barrier{snapped(11, 1, 200, 0), snapped(10, 1, 100, 0)},
		cut.WithNextSegmentID(1001))
	require.NoError(t, err)

	require.Equal(t, 3, res.Flowlines.Len())
	for id, wantLen := range map[uint32]float64{1001: 100, 1002: 100, 1003: 100} {
		fl, ok := res.Flowlines.Get(id)
		require.True(t, ok, "missing segment %d", id)
		require.InDelta(t, wantLen, fl.Length, 1e-9)
	}

	require.Equal(t, []nhd.Join{
		{UpstreamID: 0, DownstreamID: 1001, Type: nhd.JoinOrigin},
		{UpstreamID: 1001, DownstreamID: 1002, Upstream: 500, Downstream: 500, Type: nhd.JoinInternal},
		{UpstreamID: 1002, DownstreamID: 1003, Upstream: 500, Downstream: 500, Type: nhd.JoinInternal},
	}, joinRows(res.Joins))

	require.Equal(t, []nhd.BarrierJoin{
		{BarrierID: 10, UpstreamID: 1001, DownstreamID: 1002},
		{BarrierID: 11, UpstreamID: 1002, DownstreamID: 1003},
	}, res.BarrierJoins)
}

// TestDownstreamEndpointBarrier attaches to the existing join below the
// line, with the sentinel when there is none.
func TestDownstreamEndpointBarrier(t *testing.T) {
	f := lines(t,
		line(1, 100, orb.Point{0, 0}, orb.Point{100, 0}),
		line(2, 200, orb.Point{100, 0}, orb.Point{200, 0}),
	)
	j := joins(t, nhd.Join{UpstreamID: 1, DownstreamID: 2, Upstream: 100, Downstream: 200, Type: nhd.JoinInternal})

	res, err := cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 1, 100, 0)})
	require.NoError(t, err)
	require.Equal(t, []nhd.BarrierJoin{{BarrierID: 10, UpstreamID: 1, DownstreamID: 2}}, res.BarrierJoins)

	// Same barrier on the terminal line: sentinel downstream.
	res, err = cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 2, 200, 0)})
	require.NoError(t, err)
	require.Equal(t, []nhd.BarrierJoin{{BarrierID: 10, UpstreamID: 2, DownstreamID: 0}}, res.BarrierJoins)
}

// TestUpstreamEndpointNoNeighbour emits a single sentinel row for a
// headwater barrier.
func TestUpstreamEndpointNoNeighbour(t *testing.T) {
	f := lines(t,
		line(1, 100, orb.Point{0, 0}, orb.Point{100, 0}),
		line(2, 200, orb.Point{100, 0}, orb.Point{200, 0}),
	)
	j := joins(t, nhd.Join{UpstreamID: 1, DownstreamID: 2, Upstream: 100, Downstream: 200, Type: nhd.JoinInternal})

	res, err := cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 1, 0, 0)})
	require.NoError(t, err)
	require.Equal(t, []nhd.BarrierJoin{{BarrierID: 10, UpstreamID: 0, DownstreamID: 1}}, res.BarrierJoins)
}

// TestEndpointBarrierOnSplitLine: an endpoint row is redirected onto the
// first sub-segment when another barrier splits the same line.
func TestEndpointBarrierOnSplitLine(t *testing.T) {
	f := lines(t, line(1, 500, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})

	res, err := cut.Flowlines(f, j,
		[]nhd.Barrier{snapped(10, 1, 0, 0), snapped(11, 1, 50, 0)},
		cut.WithNextSegmentID(1001))
	require.NoError(t, err)

	require.Equal(t, []nhd.BarrierJoin{
		{BarrierID: 10, UpstreamID: 0, DownstreamID: 1001},
		{BarrierID: 11, UpstreamID: 1001, DownstreamID: 1002},
	}, res.BarrierJoins)
}

// TestCoincidentBarriers order by barrier ID and leave a zero-length
// micro-segment between the cuts.
func TestCoincidentBarriers(t *testing.T) {
	f := lines(t, line(1, 500, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})

	res, err := cut.Flowlines(f, j,
		[]nhd.Barrier{snapped(21, 1, 50, 0), snapped(20, 1, 50, 0)},
		cut.WithNextSegmentID(1001))
	require.NoError(t, err)

	require.Equal(t, 3, res.Flowlines.Len())
	mid, ok := res.Flowlines.Get(1002)
	require.True(t, ok)
	require.Zero(t, mid.Length)
	require.Equal(t, 1.0, mid.Sinuosity)

	require.Equal(t, []nhd.BarrierJoin{
		{BarrierID: 20, UpstreamID: 1001, DownstreamID: 1002},
		{BarrierID: 21, UpstreamID: 1002, DownstreamID: 1003},
	}, res.BarrierJoins)

	// The length invariant still holds across the micro-segment.
	var sum float64
	res.Flowlines.Each(func(_ int, fl *nhd.Flowline) bool {
		sum += fl.Length
		return true
	})
	require.InDelta(t, 100, sum, 1e-3)
}

// TestNoBarriers passes both tables through unchanged.
func TestNoBarriers(t *testing.T) {
	f := lines(t,
		line(1, 100, orb.Point{0, 0}, orb.Point{100, 0}),
		line(2, 200, orb.Point{100, 0}, orb.Point{200, 0}),
	)
	j := joins(t,
		nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin},
		nhd.Join{UpstreamID: 1, DownstreamID: 2, Upstream: 100, Downstream: 200, Type: nhd.JoinInternal},
	)

	res, err := cut.Flowlines(f, j, nil)
	require.NoError(t, err)
	require.Equal(t, f.Len(), res.Flowlines.Len())
	require.True(t, res.Flowlines.Has(1) && res.Flowlines.Has(2))
	require.Equal(t, joinRows(j), joinRows(res.Joins))
	require.Empty(t, res.BarrierJoins)
}

// TestLengthPreservedAcrossSplit covers the split-length invariant on a
// bent line.
func TestLengthPreservedAcrossSplit(t *testing.T) {
	f := lines(t, line(1, 500, orb.Point{0, 0}, orb.Point{100, 0}, orb.Point{100, 100}, orb.Point{200, 100}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})
	orig := geometry.Length(f.At(0).Geom)

	res, err := cut.Flowlines(f, j, []nhd.Barrier{
		snapped(10, 1, 60, 0),
		snapped(11, 1, 100, 50),
		snapped(12, 1, 150, 100),
	})
	require.NoError(t, err)
	require.Equal(t, 4, res.Flowlines.Len())

	var sum float64
	res.Flowlines.Each(func(_ int, fl *nhd.Flowline) bool {
		sum += fl.Length
		return true
	})
	require.InDelta(t, orig, sum, 1e-3)
}

// TestConsistencyErrors: unknown lineID aborts before any output.
func TestConsistencyErrors(t *testing.T) {
	f := lines(t, line(1, 100, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 1, Type: nhd.JoinOrigin})

	_, err := cut.Flowlines(f, j, []nhd.Barrier{snapped(10, 99, 50, 0)})
	require.ErrorIs(t, err, cut.ErrConsistency)
	require.ErrorContains(t, err, "99")
}

// TestValidationBeforeMutation: a join referencing a missing line fails up
// front.
func TestValidationBeforeMutation(t *testing.T) {
	f := lines(t, line(1, 100, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 77, DownstreamID: 1, Type: nhd.JoinInternal})

	_, err := cut.Flowlines(f, j, nil)
	require.ErrorIs(t, err, nhd.ErrValidation)
	require.ErrorIs(t, err, nhd.ErrUnknownLineID)
}

// TestSegmentIDOptions: zero is a violation, low values are rejected, and
// the default continues after the maximum.
func TestSegmentIDOptions(t *testing.T) {
	f := lines(t, line(7, 100, orb.Point{0, 0}, orb.Point{100, 0}))
	j := joins(t, nhd.Join{UpstreamID: 0, DownstreamID: 7, Type: nhd.JoinOrigin})
	b := []nhd.Barrier{snapped(10, 7, 50, 0)}

	_, err := cut.Flowlines(f, j, b, cut.WithNextSegmentID(0))
	require.ErrorIs(t, err, cut.ErrOptionViolation)

	_, err = cut.Flowlines(f, j, b, cut.WithNextSegmentID(5))
	require.ErrorIs(t, err, cut.ErrSegmentIDRange)

	res, err := cut.Flowlines(f, j, b)
	require.NoError(t, err)
	require.True(t, res.Flowlines.Has(8))
	require.True(t, res.Flowlines.Has(9))
}
