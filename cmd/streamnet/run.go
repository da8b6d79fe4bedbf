package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hydrographics/streamnet/nhdio"
	"github.com/hydrographics/streamnet/region"
)

// Per-region file layout under the data directory.
const (
	flowlineFile   = "flowlines.geojson"
	joinFile       = "joins.csv"
	barrierFile    = "barriers.geojson"
	floodplainFile = "floodplain_stats.csv"
)

func newRunCmd(log zerolog.Logger) *cobra.Command {
	var (
		configPath string
		dataDir    string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "run [region...]",
		Short: "Snap, cut, and build networks for each region under the data directory",
		Long: `Each region is a subdirectory of the data directory holding
flowlines.geojson, joins.csv, barriers.geojson and optionally
floodplain_stats.csv. Without arguments every subdirectory is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := region.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = region.LoadConfig(configPath); err != nil {
					return err
				}
			}

			ids := args
			if len(ids) == 0 {
				var err error
				if ids, err = listRegions(dataDir); err != nil {
					return err
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no regions under %s", dataDir)
			}

			regions := make([]region.Data, 0, len(ids))
			for _, id := range ids {
				data, err := loadRegion(dataDir, id)
				if err != nil {
					return fmt.Errorf("region %s: %w", id, err)
				}
				regions = append(regions, data)
			}

			results, err := region.RunAll(cmd.Context(), regions, cfg, log)
			if err != nil {
				return err
			}
			for id, res := range results {
				if err := writeRegion(filepath.Join(outDir, id), res); err != nil {
					return fmt.Errorf("region %s: %w", id, err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "directory holding one subdirectory per region")
	cmd.Flags().StringVarP(&outDir, "out", "o", "out", "directory receiving per-region outputs")

	return cmd
}

func listRegions(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}

	return ids, nil
}

func loadRegion(dataDir, id string) (region.Data, error) {
	dir := filepath.Join(dataDir, id)
	data := region.Data{ID: id}

	if err := readFile(filepath.Join(dir, flowlineFile), func(f *os.File) error {
		var err error
		data.Flowlines, err = nhdio.ReadFlowlines(f)
		return err
	}); err != nil {
		return data, err
	}
	if err := readFile(filepath.Join(dir, joinFile), func(f *os.File) error {
		var err error
		data.Joins, err = nhdio.ReadJoins(f)
		return err
	}); err != nil {
		return data, err
	}
	if err := readFile(filepath.Join(dir, barrierFile), func(f *os.File) error {
		var err error
		data.Barriers, err = nhdio.ReadBarriers(f)
		return err
	}); err != nil {
		return data, err
	}

	// Floodplain stats are optional; missing rows contribute zero.
	fpPath := filepath.Join(dir, floodplainFile)
	if _, err := os.Stat(fpPath); err == nil {
		if err := readFile(fpPath, func(f *os.File) error {
			var err error
			data.Floodplain, err = nhdio.ReadFloodplainStats(f)
			return err
		}); err != nil {
			return data, err
		}
	}

	return data, nil
}

func writeRegion(dir string, res *region.Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	writers := []struct {
		name string
		fn   func(*os.File) error
	}{
		{"flowlines.geojson", func(f *os.File) error { return nhdio.WriteFlowlines(f, res.Flowlines) }},
		{"joins.csv", func(f *os.File) error { return nhdio.WriteJoins(f, res.Joins) }},
		{"barriers_snapped.geojson", func(f *os.File) error { return nhdio.WriteBarriers(f, res.Snapped) }},
		{"barrier_joins.csv", func(f *os.File) error { return nhdio.WriteBarrierJoins(f, res.BarrierJoins) }},
		{"network_stats.csv", func(f *os.File) error { return nhdio.WriteNetworkStats(f, res.Networks.Stats) }},
		{"barriers_network.csv", func(f *os.File) error { return nhdio.WriteBarrierNetworks(f, res.Networks.Barriers) }},
		{"networks.geojson", func(f *os.File) error { return nhdio.WriteNetworks(f, res.Dissolved) }},
	}
	for _, w := range writers {
		if err := writeFile(filepath.Join(dir, w.name), w.fn); err != nil {
			return err
		}
	}

	return nil
}

func readFile(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(f)
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
