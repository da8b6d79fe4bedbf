// SPDX-License-Identifier: MIT
//
// File: errors.go — sentinel errors for the nhd package.
//
// Error policy:
//   - Only package-level sentinel variables are exposed.
//   - Callers branch with errors.Is(err, ErrX).
//   - Detail (offending IDs) is attached at the call site via %w wrapping,
//     never baked into the sentinel itself.

package nhd

import "errors"

// ErrValidation is the root of every input-validation failure. Every
// validation error this package returns wraps it together with one of the
// specific sentinels below, so errors.Is(err, ErrValidation) catches the
// whole class.
var ErrValidation = errors.New("nhd: input validation failed")

// ErrZeroLineID indicates a flowline carrying the reserved sentinel ID.
var ErrZeroLineID = errors.New("nhd: lineID 0 is reserved")

// ErrDuplicateLineID indicates two flowlines sharing one lineID.
var ErrDuplicateLineID = errors.New("nhd: duplicate lineID")

// ErrBadGeometry indicates a flowline without two distinct endpoints.
var ErrBadGeometry = errors.New("nhd: flowline needs at least two distinct endpoint coordinates")

// ErrBadLength indicates a flowline with non-positive length.
var ErrBadLength = errors.New("nhd: flowline length must be positive")

// ErrBadSinuosity indicates a sinuosity below 1.
var ErrBadSinuosity = errors.New("nhd: sinuosity must be >= 1")

// ErrEmptyJoin indicates a join with the sentinel on both endpoints.
var ErrEmptyJoin = errors.New("nhd: join with both endpoints 0")

// ErrDuplicateJoin indicates two identical (upstream_id, downstream_id) rows.
var ErrDuplicateJoin = errors.New("nhd: duplicate join")

// ErrUnknownLineID indicates a join endpoint referencing a lineID that is
// neither the sentinel nor present in the flowline table.
var ErrUnknownLineID = errors.New("nhd: join references unknown lineID")
