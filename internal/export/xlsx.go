package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/housing-cli/internal/aggregate"
	"github.com/sells-group/housing-cli/internal/model"
)

// Workbook sheet names.
const (
	SheetUnits         = "units_per_year"
	SheetRent          = "rent_per_year"
	SheetPrice         = "price_per_year"
	SheetYearHood      = "year_neighborhood"
	SheetNeighborhoods = "neighborhoods"
	SheetTop           = "top_neighborhoods"
	SheetLocations     = "locations"
	SheetTopCensus     = "top_census"
)

var meanHeader = []string{model.ColHousingUnits, model.ColSalePriceSqrFoot, model.ColGrossRent}

type sheetWriter struct {
	sheet *xlsx.Sheet
}

func (w sheetWriter) header(cols ...string) {
	row := w.sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}

func (w sheetWriter) row() *xlsx.Row { return w.sheet.AddRow() }

// setFloat leaves the cell blank for absent values.
func setFloat(row *xlsx.Row, v *float64) {
	c := row.AddCell()
	if v != nil {
		c.SetFloat(*v)
	}
}

func setInt(row *xlsx.Row, v *int64) {
	c := row.AddCell()
	if v != nil {
		c.SetInt64(*v)
	}
}

// Workbook writes every aggregate in s to an XLSX file, one sheet per table.
func Workbook(path string, s *aggregate.Summary) error {
	f := xlsx.NewFile()
	add := func(name string) (sheetWriter, error) {
		sh, err := f.AddSheet(name)
		if err != nil {
			return sheetWriter{}, eris.Wrapf(err, "export: add sheet %s", name)
		}
		return sheetWriter{sheet: sh}, nil
	}

	series := []struct {
		name, column string
		values       []model.YearValue
	}{
		{SheetUnits, model.ColHousingUnits, s.HousingUnitsPerYear},
		{SheetRent, model.ColGrossRent, s.GrossRentPerYear},
		{SheetPrice, model.ColSalePriceSqrFoot, s.SalePricePerYear},
	}
	for _, ser := range series {
		w, err := add(ser.name)
		if err != nil {
			return err
		}
		w.header(model.ColYear, ser.column)
		for _, v := range ser.values {
			row := w.row()
			row.AddCell().SetInt(v.Year)
			setFloat(row, v.Value)
		}
	}

	w, err := add(SheetYearHood)
	if err != nil {
		return err
	}
	w.header(append([]string{model.ColYear, model.ColNeighborhood}, meanHeader...)...)
	for _, m := range s.MeanByYearNeighborhood {
		row := w.row()
		row.AddCell().SetInt(m.Year)
		row.AddCell().SetString(m.Neighborhood)
		setFloat(row, m.HousingUnits)
		setFloat(row, m.SalePriceSqrFoot)
		setFloat(row, m.GrossRent)
	}

	for _, tbl := range []struct {
		name string
		rows []model.NeighborhoodMeans
	}{
		{SheetNeighborhoods, s.MeanByNeighborhood},
		{SheetTop, s.TopNeighborhoods},
	} {
		w, err := add(tbl.name)
		if err != nil {
			return err
		}
		w.header(append([]string{model.ColNeighborhood}, meanHeader...)...)
		for _, m := range tbl.rows {
			row := w.row()
			row.AddCell().SetString(m.Neighborhood)
			setFloat(row, m.HousingUnits)
			setFloat(row, m.SalePriceSqrFoot)
			setFloat(row, m.GrossRent)
		}
	}

	w, err = add(SheetLocations)
	if err != nil {
		return err
	}
	w.header(append([]string{model.ColNeighborhood, "lat", "lon"}, meanHeader...)...)
	for _, l := range s.Locations {
		row := w.row()
		row.AddCell().SetString(l.Neighborhood)
		row.AddCell().SetFloat(l.Latitude)
		row.AddCell().SetFloat(l.Longitude)
		setFloat(row, l.HousingUnits)
		setFloat(row, l.SalePriceSqrFoot)
		setFloat(row, l.GrossRent)
	}

	w, err = add(SheetTopCensus)
	if err != nil {
		return err
	}
	w.header(model.ColYear, model.ColNeighborhood, model.ColHousingUnits, model.ColSalePriceSqrFoot, model.ColGrossRent)
	for _, r := range s.TopCensus {
		row := w.row()
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(r.Neighborhood)
		setInt(row, r.HousingUnits)
		setFloat(row, r.SalePriceSqrFoot)
		setFloat(row, r.GrossRent)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}
