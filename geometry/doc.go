// Package geometry is the small planar geometry module of streamnet. It
// exposes only the operations the engine needs on orb linestrings and
// points: bounding rectangles, point-to-line distance, projection to a
// curvilinear coordinate, interpolation at a curvilinear coordinate, and
// cutting a line at interior positions.
//
// All coordinates are assumed to share one planar projection with metre
// units; nothing here reprojects.
package geometry
