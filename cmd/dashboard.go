package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/aggregate"
	"github.com/sells-group/housing-cli/internal/chart"
	"github.com/sells-group/housing-cli/internal/export"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render every chart and the tabbed dashboard page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		censusPath, _ := cmd.Flags().GetString("census")
		coordsPath, _ := cmd.Flags().GetString("coordinates")
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.Output.Dir = out
		}
		if noImages, _ := cmd.Flags().GetBool("no-images"); noImages {
			cfg.Output.Images = nil
		}
		if err := cfg.Validate("dashboard"); err != nil {
			return err
		}

		in, err := loadInputs(ctx, censusPath, coordsPath)
		if err != nil {
			return eris.Wrap(err, "dashboard")
		}

		var snap chart.Snapshotter
		if len(cfg.Output.Images) > 0 {
			snap = chart.NewChromeSnapshotter(time.Duration(cfg.Output.ImageTimeoutSecs) * time.Second)
		}
		m, err := renderDashboard(ctx, in, snap)
		if err != nil {
			return eris.Wrap(err, "dashboard")
		}

		zap.L().Info("dashboard complete",
			zap.String("dir", cfg.Output.Dir),
			zap.Int("artifacts", len(m.Artifacts)),
		)
		return nil
	},
}

// renderDashboard writes the charts, dashboard page, units CSV and manifest
// into cfg.Output.Dir.
func renderDashboard(ctx context.Context, in *inputs, snap chart.Snapshotter) (*export.Manifest, error) {
	dir := cfg.Output.Dir
	summary := aggregate.Compute(in.Census, in.Coordinates, cfg.Aggregate.TopN)
	charts := chart.Build(summary, chart.Options{
		MapboxToken: cfg.Mapbox.Token,
		MapboxStyle: cfg.Mapbox.Style,
		MapboxZoom:  cfg.Mapbox.Zoom,
	})
	if len(summary.Locations) == 0 {
		zap.L().Warn("no neighborhood matched a coordinate; map skipped")
	}

	artifacts, err := chart.WriteCharts(ctx, charts, chart.WriteOptions{
		Dir:         filepath.Join(dir, "charts"),
		Images:      cfg.Output.Images,
		Concurrency: cfg.Output.Concurrency,
		Snapshotter: snap,
	})
	if err != nil {
		return nil, err
	}

	m := &export.Manifest{
		GeneratedAt:   time.Now().UTC(),
		Census:        in.CensusSource,
		Coordinates:   in.CoordinatesSource,
		CensusRows:    len(in.Census),
		Neighborhoods: len(summary.MeanByNeighborhood),
		Artifacts:     artifacts,
	}

	page := filepath.Join(dir, "dashboard.html")
	if err := chart.Layout(cfg.Dashboard.Title, cfg.Dashboard.PlotlyURL, charts).WriteFile(page); err != nil {
		return nil, err
	}
	m.Add("dashboard", export.KindDashboard, page)

	if cfg.Output.UnitsCSV != "" {
		unitsPath := filepath.Join(dir, cfg.Output.UnitsCSV)
		if err := export.UnitsCSV(unitsPath, summary.HousingUnitsPerYear); err != nil {
			return nil, err
		}
		m.Add("units_per_year", export.KindCSV, unitsPath)
	}

	if err := m.Write(filepath.Join(dir, "manifest.yaml")); err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	dashboardCmd.Flags().String("census", "", "census CSV/XLSX path or URL (default from config)")
	dashboardCmd.Flags().String("coordinates", "", "coordinates CSV path or URL (default from config)")
	dashboardCmd.Flags().String("out", "", "output directory (default from config)")
	dashboardCmd.Flags().Bool("no-images", false, "skip PNG snapshots")
	rootCmd.AddCommand(dashboardCmd)
}
