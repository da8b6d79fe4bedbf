package nhdio

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/hydrographics/streamnet/geometry"
	"github.com/hydrographics/streamnet/network"
	"github.com/hydrographics/streamnet/nhd"
)

// ReadFlowlines parses the flowline table from a GeoJSON feature
// collection of LineStrings. Required properties per feature: lineID,
// NHDPlusID, size_class, stream_order; length and sinuosity are read when
// present and otherwise derived from the geometry.
func ReadFlowlines(r io.Reader) (*nhd.FlowlineTable, error) {
	fc, err := readCollection(r)
	if err != nil {
		return nil, err
	}

	lines := make([]nhd.Flowline, 0, len(fc.Features))
	for i, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d: want LineString, got %T", ErrGeometryType, i, f.Geometry)
		}
		fl := nhd.Flowline{Geom: ls}
		if fl.LineID, err = propUint32(f, "lineID"); err != nil {
			return nil, featureErr(i, err)
		}
		if fl.NHDPlusID, err = propUint64(f, "NHDPlusID"); err != nil {
			return nil, featureErr(i, err)
		}
		sc, err := propString(f, "size_class")
		if err != nil {
			return nil, featureErr(i, err)
		}
		fl.SizeClass = nhd.SizeClass(sc)
		order, err := propUint32(f, "stream_order")
		if err != nil {
			return nil, featureErr(i, err)
		}
		fl.StreamOrder = uint8(order)
		if loop, ok := f.Properties["loop"].(bool); ok {
			fl.Loop = loop
		}
		fl.Length = propFloatOr(f, "length", geometry.Length(ls))
		fl.Sinuosity = propFloatOr(f, "sinuosity", geometry.Sinuosity(ls))
		lines = append(lines, fl)
	}

	return nhd.NewFlowlineTable(lines)
}

// WriteFlowlines writes the flowline table as a GeoJSON feature collection,
// same schema as ReadFlowlines.
func WriteFlowlines(w io.Writer, lines *nhd.FlowlineTable) error {
	fc := geojson.NewFeatureCollection()
	lines.Each(func(_ int, fl *nhd.Flowline) bool {
		f := geojson.NewFeature(fl.Geom)
		f.Properties = geojson.Properties{
			"lineID":       fl.LineID,
			"NHDPlusID":    fl.NHDPlusID,
			"length":       fl.Length,
			"sinuosity":    fl.Sinuosity,
			"size_class":   string(fl.SizeClass),
			"stream_order": fl.StreamOrder,
			"loop":         fl.Loop,
		}
		fc.Append(f)
		return true
	})

	return writeCollection(w, fc)
}

// ReadBarriers parses the barrier table from a GeoJSON feature collection
// of Points. Required properties: barrier_id, kind.
func ReadBarriers(r io.Reader) ([]nhd.Barrier, error) {
	fc, err := readCollection(r)
	if err != nil {
		return nil, err
	}

	barriers := make([]nhd.Barrier, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d: want Point, got %T", ErrGeometryType, i, f.Geometry)
		}
		b := nhd.Barrier{Geom: pt}
		if b.BarrierID, err = propUint32(f, "barrier_id"); err != nil {
			return nil, featureErr(i, err)
		}
		kind, err := propString(f, "kind")
		if err != nil {
			return nil, featureErr(i, err)
		}
		b.Kind = nhd.BarrierKind(kind)
		barriers = append(barriers, b)
	}

	return barriers, nil
}

// WriteBarriers writes snapped barriers as a GeoJSON feature collection,
// carrying the placement fields filled in by the snapper.
func WriteBarriers(w io.Writer, barriers []nhd.Barrier) error {
	fc := geojson.NewFeatureCollection()
	for _, b := range barriers {
		f := geojson.NewFeature(b.Geom)
		f.Properties = geojson.Properties{
			"barrier_id":  b.BarrierID,
			"kind":        string(b.Kind),
			"lineID":      b.LineID,
			"NHDPlusID":   b.NHDPlusID,
			"snap_dist":   b.SnapDist,
			"nearby":      b.Nearby,
			"is_endpoint": b.IsEndpoint,
		}
		fc.Append(f)
	}

	return writeCollection(w, fc)
}

// WriteNetworks writes dissolved network geometries as a GeoJSON feature
// collection of MultiLineStrings with a network_id property.
func WriteNetworks(w io.Writer, dissolved []network.Dissolved) error {
	fc := geojson.NewFeatureCollection()
	for _, d := range dissolved {
		f := geojson.NewFeature(d.Geom)
		f.Properties = geojson.Properties{"network_id": d.NetworkID}
		fc.Append(f)
	}

	return writeCollection(w, fc)
}

func readCollection(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	return fc, nil
}

func writeCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)

	return err
}

func featureErr(i int, err error) error {
	return fmt.Errorf("feature %d: %w", i, err)
}

func propUint32(f *geojson.Feature, name string) (uint32, error) {
	v, err := propFloat(f, name)
	return uint32(v), err
}

func propUint64(f *geojson.Feature, name string) (uint64, error) {
	v, err := propFloat(f, name)
	return uint64(v), err
}

func propFloat(f *geojson.Feature, name string) (float64, error) {
	v, ok := f.Properties[name].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: missing numeric property %q", ErrSchema, name)
	}

	return v, nil
}

func propFloatOr(f *geojson.Feature, name string, fallback float64) float64 {
	if v, ok := f.Properties[name].(float64); ok {
		return v
	}

	return fallback
}

func propString(f *geojson.Feature, name string) (string, error) {
	s, ok := f.Properties[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing string property %q", ErrSchema, name)
	}

	return s, nil
}
