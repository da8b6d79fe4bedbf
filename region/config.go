// Package region drives the full pipeline for one hydrographic region and
// fans out across independent regions in parallel. A region is a
// self-contained input tuple (flowlines, joins, barriers, floodplain
// stats); regions share no state, so region runs need no locks and only the
// shared result map of the fan-out is guarded.
package region

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hydrographics/streamnet/nhd"
)

// Sentinel errors for region configuration.
var (
	// ErrConfig indicates an invalid run configuration.
	ErrConfig = errors.New("region: invalid configuration")
)

// Config holds the tunables of one analysis run.
type Config struct {
	// SnapToleranceM is the maximum snap distance in metres.
	SnapToleranceM float64 `yaml:"snap_tolerance_m"`

	// DuplicateToleranceM deduplicates barrier points within this distance
	// before snapping. Zero disables deduplication.
	DuplicateToleranceM float64 `yaml:"duplicate_tolerance_m"`

	// PreferEndpoint selects the endpoint snapping policy.
	PreferEndpoint bool `yaml:"prefer_endpoint"`

	// BarrierKinds chooses which kinds participate as cutting barriers.
	// Waterfalls are always enabled and are added back if omitted.
	BarrierKinds []nhd.BarrierKind `yaml:"barrier_kinds"`

	// NextSegmentID seeds new segment IDs for the cutter. Zero selects
	// max(lineID)+1 per region. Multi-region runs that need globally unique
	// IDs pack a region number here (e.g. region * 1e6 + 1).
	NextSegmentID uint32 `yaml:"next_segment_id"`

	// Workers bounds RunAll's parallelism. Zero selects GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the standard run configuration: 100 m snap
// tolerance, 10 m duplicate tolerance, orthogonal snapping, dams and
// waterfalls cutting.
func DefaultConfig() Config {
	return Config{
		SnapToleranceM:      100,
		DuplicateToleranceM: 10,
		BarrierKinds:        []nhd.BarrierKind{nhd.KindDam, nhd.KindWaterfall},
	}
}

// LoadConfig reads a YAML run configuration, applying defaults for omitted
// fields.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges and enforces the always-on waterfall rule.
func (c *Config) Validate() error {
	if c.SnapToleranceM <= 0 {
		return fmt.Errorf("%w: snap_tolerance_m must be positive", ErrConfig)
	}
	if c.DuplicateToleranceM < 0 {
		return fmt.Errorf("%w: duplicate_tolerance_m must not be negative", ErrConfig)
	}
	for _, k := range c.BarrierKinds {
		switch k {
		case nhd.KindDam, nhd.KindWaterfall, nhd.KindSmallBarrier:
		default:
			return fmt.Errorf("%w: unknown barrier kind %q", ErrConfig, k)
		}
	}
	if !slices.Contains(c.BarrierKinds, nhd.KindWaterfall) {
		c.BarrierKinds = append(c.BarrierKinds, nhd.KindWaterfall)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfig)
	}

	return nil
}

// workers resolves the effective fan-out limit.
func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.GOMAXPROCS(0)
}
