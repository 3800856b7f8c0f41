package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/aggregate"
	"github.com/sells-group/housing-cli/internal/export"
	"github.com/sells-group/housing-cli/internal/model"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Compute the summary tables and print or export them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		censusPath, _ := cmd.Flags().GetString("census")
		coordsPath, _ := cmd.Flags().GetString("coordinates")
		if cmd.Flags().Changed("top") {
			cfg.Aggregate.TopN, _ = cmd.Flags().GetInt("top")
		}
		if err := cfg.Validate("aggregate"); err != nil {
			return err
		}

		in, err := loadInputs(ctx, censusPath, coordsPath)
		if err != nil {
			return eris.Wrap(err, "aggregate")
		}
		summary := aggregate.Compute(in.Census, in.Coordinates, cfg.Aggregate.TopN)

		if err := writeExports(cmd, summary); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		formatYears(os.Stdout, summary)
		fmt.Fprintln(os.Stdout)
		formatNeighborhoods(os.Stdout, summary.TopNeighborhoods)
		return nil
	},
}

// writeExports writes each export whose flag was given.
func writeExports(cmd *cobra.Command, s *aggregate.Summary) error {
	exports := []struct {
		flag  string
		write func(path string) error
	}{
		{"units-csv", func(p string) error { return export.UnitsCSV(p, s.HousingUnitsPerYear) }},
		{"xlsx", func(p string) error { return export.Workbook(p, s) }},
		{"geojson", func(p string) error { return export.GeoJSON(p, s.Locations) }},
		{"shapefile", func(p string) error { return export.Shapefile(p, s.Locations) }},
	}
	for _, e := range exports {
		path, _ := cmd.Flags().GetString(e.flag)
		if path == "" {
			continue
		}
		if err := e.write(path); err != nil {
			return eris.Wrapf(err, "aggregate: --%s", e.flag)
		}
		zap.L().Info("export written", zap.String("kind", e.flag), zap.String("path", path))
	}
	return nil
}

func formatValue(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

// formatYears writes the per-year means as a table.
func formatYears(out io.Writer, s *aggregate.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "YEAR\tHOUSING_UNITS\tGROSS_RENT\tSALE_PRICE_SQR_FOOT\t")
	for i, u := range s.HousingUnitsPerYear {
		var rent, price *float64
		if i < len(s.GrossRentPerYear) {
			rent = s.GrossRentPerYear[i].Value
		}
		if i < len(s.SalePricePerYear) {
			price = s.SalePricePerYear[i].Value
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", u.Year, formatValue(u.Value, 0), formatValue(rent, 0), formatValue(price, 2))
	}
	_ = w.Flush()
}

// formatNeighborhoods writes the ranked neighborhoods as a table.
func formatNeighborhoods(out io.Writer, top []model.NeighborhoodMeans) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNEIGHBORHOOD\tSALE_PRICE_SQR_FOOT\tHOUSING_UNITS\tGROSS_RENT")
	for i, m := range top {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, m.Neighborhood,
			formatValue(m.SalePriceSqrFoot, 2), formatValue(m.HousingUnits, 0), formatValue(m.GrossRent, 0))
	}
	_ = w.Flush()
}

func init() {
	aggregateCmd.Flags().String("census", "", "census CSV/XLSX path or URL (default from config)")
	aggregateCmd.Flags().String("coordinates", "", "coordinates CSV path or URL (default from config)")
	aggregateCmd.Flags().Int("top", aggregate.DefaultTopN, "number of neighborhoods to rank (<= 0 uses the default)")
	aggregateCmd.Flags().Bool("json", false, "print the full summary as JSON")
	aggregateCmd.Flags().String("units-csv", "", "write mean housing units per year to this CSV")
	aggregateCmd.Flags().String("xlsx", "", "write every aggregate to this XLSX workbook")
	aggregateCmd.Flags().String("geojson", "", "write joined neighborhood locations as GeoJSON")
	aggregateCmd.Flags().String("shapefile", "", "write joined neighborhood locations as a point shapefile")
	rootCmd.AddCommand(aggregateCmd)
}
