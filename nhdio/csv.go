package nhdio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hydrographics/streamnet/network"
	"github.com/hydrographics/streamnet/nhd"
)

// Sentinel errors for table IO.
var (
	// ErrSchema indicates a missing or malformed column.
	ErrSchema = errors.New("nhdio: schema violation")

	// ErrGeometryType indicates a feature whose geometry type does not match
	// the table (e.g. a polygon in the flowline file).
	ErrGeometryType = errors.New("nhdio: geometry type mismatch")
)

// header resolves column names to positions, failing on absent columns.
type header map[string]int

func newHeader(record []string, required ...string) (header, error) {
	h := make(header, len(record))
	for i, name := range record {
		h[name] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
		}
	}

	return h, nil
}

func (h header) field(record []string, name string) string {
	return record[h[name]]
}

// ReadJoins parses the join table from CSV with columns
// upstream_id, downstream_id, upstream, downstream, type.
func ReadJoins(r io.Reader) (*nhd.JoinTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty join file", ErrSchema)
	}
	h, err := newHeader(records[0], "upstream_id", "downstream_id", "upstream", "downstream", "type")
	if err != nil {
		return nil, err
	}

	joins := make([]nhd.Join, 0, len(records)-1)
	for i, rec := range records[1:] {
		up, err := parseUint32(h.field(rec, "upstream_id"))
		if err != nil {
			return nil, rowErr(i, "upstream_id", err)
		}
		down, err := parseUint32(h.field(rec, "downstream_id"))
		if err != nil {
			return nil, rowErr(i, "downstream_id", err)
		}
		upExt, err := parseUint64(h.field(rec, "upstream"))
		if err != nil {
			return nil, rowErr(i, "upstream", err)
		}
		downExt, err := parseUint64(h.field(rec, "downstream"))
		if err != nil {
			return nil, rowErr(i, "downstream", err)
		}
		joins = append(joins, nhd.Join{
			UpstreamID:   up,
			DownstreamID: down,
			Upstream:     upExt,
			Downstream:   downExt,
			Type:         nhd.JoinType(h.field(rec, "type")),
		})
	}

	return nhd.NewJoinTable(joins)
}

// WriteJoins writes the join table as CSV, same schema as ReadJoins.
func WriteJoins(w io.Writer, joins *nhd.JoinTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"upstream_id", "downstream_id", "upstream", "downstream", "type"}); err != nil {
		return err
	}
	var werr error
	joins.Each(func(_ int, j *nhd.Join) bool {
		werr = cw.Write([]string{
			formatUint32(j.UpstreamID),
			formatUint32(j.DownstreamID),
			strconv.FormatUint(j.Upstream, 10),
			strconv.FormatUint(j.Downstream, 10),
			string(j.Type),
		})
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	cw.Flush()

	return cw.Error()
}

// ReadFloodplainStats parses per-catchment floodplain areas from CSV with
// columns NHDPlusID, floodplain_km2, nat_floodplain_km2, keyed by NHDPlusID.
func ReadFloodplainStats(r io.Reader) (map[uint64]nhd.FloodplainStats, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty floodplain file", ErrSchema)
	}
	h, err := newHeader(records[0], "NHDPlusID", "floodplain_km2", "nat_floodplain_km2")
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]nhd.FloodplainStats, len(records)-1)
	for i, rec := range records[1:] {
		id, err := parseUint64(h.field(rec, "NHDPlusID"))
		if err != nil {
			return nil, rowErr(i, "NHDPlusID", err)
		}
		fp, err := strconv.ParseFloat(h.field(rec, "floodplain_km2"), 64)
		if err != nil {
			return nil, rowErr(i, "floodplain_km2", err)
		}
		nat, err := strconv.ParseFloat(h.field(rec, "nat_floodplain_km2"), 64)
		if err != nil {
			return nil, rowErr(i, "nat_floodplain_km2", err)
		}
		out[id] = nhd.FloodplainStats{NHDPlusID: id, FloodplainKm2: fp, NatFloodplainKm2: nat}
	}

	return out, nil
}

// WriteBarrierJoins writes the barrier-join table as CSV with columns
// barrier_id, upstream_id, downstream_id.
func WriteBarrierJoins(w io.Writer, rows []nhd.BarrierJoin) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"barrier_id", "upstream_id", "downstream_id"}); err != nil {
		return err
	}
	for _, bj := range rows {
		if err := cw.Write([]string{
			formatUint32(bj.BarrierID),
			formatUint32(bj.UpstreamID),
			formatUint32(bj.DownstreamID),
		}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteNetworkStats writes per-network statistics as CSV with columns
// network_id, miles, NetworkSinuosity, NumSizeClassGained,
// PctNatFloodplain, segment_count.
func WriteNetworkStats(w io.Writer, stats []network.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"network_id", "miles", "NetworkSinuosity", "NumSizeClassGained", "PctNatFloodplain", "segment_count"}); err != nil {
		return err
	}
	for _, st := range stats {
		if err := cw.Write([]string{
			formatUint32(st.NetworkID),
			formatFloat(st.Miles),
			formatFloat(st.Sinuosity),
			strconv.Itoa(st.SizeClassesGained),
			formatFloat(st.PctNatFloodplain),
			strconv.Itoa(st.SegmentCount),
		}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteBarrierNetworks writes per-barrier metrics as CSV with columns
// barrier_id, upNetID, UpstreamMiles, downNetID, DownstreamMiles,
// AbsoluteGainMi, NetworkSinuosity, NumSizeClassGained, PctNatFloodplain.
func WriteBarrierNetworks(w io.Writer, rows []network.BarrierMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"barrier_id", "upNetID", "UpstreamMiles", "downNetID", "DownstreamMiles",
		"AbsoluteGainMi", "NetworkSinuosity", "NumSizeClassGained", "PctNatFloodplain",
	}); err != nil {
		return err
	}
	for _, m := range rows {
		if err := cw.Write([]string{
			formatUint32(m.BarrierID),
			formatUint32(m.UpNetID),
			formatFloat(m.UpstreamMiles),
			formatUint32(m.DownNetID),
			formatFloat(m.DownstreamMiles),
			formatFloat(m.AbsoluteGainMi),
			formatFloat(m.Sinuosity),
			strconv.Itoa(m.SizeClassesGained),
			formatFloat(m.PctNatFloodplain),
		}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func rowErr(row int, column string, err error) error {
	return fmt.Errorf("%w: row %d column %s: %v", ErrSchema, row+1, column, err)
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func parseUint64(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func formatUint32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
