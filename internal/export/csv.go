// Package export writes aggregate tables and neighborhood locations to
// files: CSV, XLSX, GeoJSON, ESRI shapefile, and a YAML run manifest.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-cli/internal/model"
)

// UnitsCSV writes the mean housing units per year as a two-column CSV
// (year, housing_units). Years without a mean get an empty cell.
func UnitsCSV(path string, units []model.YearValue) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create units csv")
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{model.ColYear, model.ColHousingUnits}); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "export: write units header")
	}
	for _, u := range units {
		if err := w.Write([]string{strconv.Itoa(u.Year), formatFloat(u.Value)}); err != nil {
			_ = f.Close()
			return eris.Wrapf(err, "export: write units row %d", u.Year)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "export: flush units csv")
	}
	return eris.Wrap(f.Close(), "export: close units csv")
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
