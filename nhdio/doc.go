// Package nhdio reads and writes the engine's tables: attribute tables as
// CSV and spatial tables as GeoJSON feature collections. It performs the
// schema checks of the ingest contract (required columns present, geometry
// types matching) and nothing else; semantic validation belongs to the nhd
// table constructors.
//
// All readers consume whole files; there is no streaming ingest.
package nhdio
