// Package nhd defines the core data model of the streamnet engine:
// flowlines, joins, barriers, barrier joins, and floodplain statistics,
// together with the typed tables that hold them and the validation rules
// every pipeline stage relies on.
//
// All tables are immutable once constructed. Pipeline stages that change
// flowlines or joins (the cutter) return new tables; nothing downstream of
// construction mutates a table in place.
//
// The zero lineID is reserved as a sentinel meaning "no segment". It may
// appear only in join endpoints (at region boundaries or network
// extremities), never as a flowline's own identifier.
package nhd
