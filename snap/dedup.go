package snap

import (
	"math"

	"github.com/hydrographics/streamnet/nhd"
)

// gridKey buckets a coordinate pair at a given tolerance.
type gridKey struct{ x, y int64 }

// Dedup reduces barriers that are within tolerance of each other to the
// first record: two points land in one bucket when their coordinates floor
// to the same tolerance-sized grid cell. Runs before snapping so duplicated
// inventory records do not cut the same flowline twice.
//
// A non-positive tolerance disables deduplication. Input order is preserved
// and the input slice is not modified.
func Dedup(barriers []nhd.Barrier, tolerance float64) []nhd.Barrier {
	if tolerance <= 0 || len(barriers) == 0 {
		return barriers
	}

	seen := make(map[gridKey]struct{}, len(barriers))
	out := make([]nhd.Barrier, 0, len(barriers))
	for _, b := range barriers {
		k := gridKey{
			x: int64(math.Floor(b.Geom[0] / tolerance)),
			y: int64(math.Floor(b.Geom[1] / tolerance)),
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, b)
	}

	return out
}
