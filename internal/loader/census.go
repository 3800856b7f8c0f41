// Package loader reads the census and neighborhood-coordinate tables into
// record sets.
package loader

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/fetcher"
	"github.com/sells-group/housing-cli/internal/model"
)

var censusColumns = []string{ColYear, ColNeighborhood, ColHousingUnits, ColSalePriceSqrFoot, ColGrossRent}

// Column names after header normalization.
const (
	ColYear             = model.ColYear
	ColNeighborhood     = model.ColNeighborhood
	ColHousingUnits     = model.ColHousingUnits
	ColSalePriceSqrFoot = model.ColSalePriceSqrFoot
	ColGrossRent        = model.ColGrossRent
)

// LoadCensus reads a census table with the default Loader.
func LoadCensus(ctx context.Context, path string) ([]model.CensusRecord, error) {
	return New(Options{}).Census(ctx, path)
}

// Census reads the census table at src. Extra columns are ignored; empty
// numeric cells load as nil.
func (l *Loader) Census(ctx context.Context, src string) ([]model.CensusRecord, error) {
	t, err := l.readTable(ctx, src)
	if err != nil {
		return nil, err
	}
	records, err := parseCensus(src, t)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loader: census loaded", zap.String("source", src), zap.Int("rows", len(records)))
	return records, nil
}

func parseCensus(src string, t *fetcher.Table) ([]model.CensusRecord, error) {
	idx := t.Index()
	cols := make(map[string]int, len(censusColumns))
	for _, name := range censusColumns {
		i, ok := idx[name]
		if !ok {
			return nil, &ParseError{Path: src, Column: name, Msg: "missing required column"}
		}
		cols[name] = i
	}

	records := make([]model.CensusRecord, 0, len(t.Rows))
	for n, row := range t.Rows {
		rowNum := n + 1
		perr := func(col, msg string) error {
			return &ParseError{Path: src, Row: rowNum, Column: col, Msg: msg}
		}

		yearCell := cell(row, cols[ColYear])
		year, err := parseYear(yearCell)
		if err != nil {
			return nil, perr(ColYear, "invalid year "+strconv.Quote(yearCell))
		}

		hood := cell(row, cols[ColNeighborhood])
		if hood == "" {
			return nil, perr(ColNeighborhood, "empty neighborhood")
		}

		rec := model.CensusRecord{Year: year, Neighborhood: hood}

		if rec.HousingUnits, err = parseOptionalInt(cell(row, cols[ColHousingUnits])); err != nil {
			return nil, perr(ColHousingUnits, err.Error())
		}
		if rec.SalePriceSqrFoot, err = parseOptionalFloat(cell(row, cols[ColSalePriceSqrFoot])); err != nil {
			return nil, perr(ColSalePriceSqrFoot, err.Error())
		}
		if rec.GrossRent, err = parseOptionalFloat(cell(row, cols[ColGrossRent])); err != nil {
			return nil, perr(ColGrossRent, err.Error())
		}

		records = append(records, rec)
	}
	return records, nil
}

// cell returns the trimmed value at i, or "" for short rows.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseYear accepts integers and integral floats such as "2010.0".
func parseYear(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// isMissing reports cells treated as absent values.
func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return true
	}
	return false
}

type numberError string

func (e numberError) Error() string { return string(e) }

func parseOptionalInt(s string) (*int64, error) {
	if isMissing(s) {
		return nil, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, numberError("invalid integer " + strconv.Quote(s))
	}
	v := int64(f)
	return &v, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if isMissing(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, numberError("invalid number " + strconv.Quote(s))
	}
	return &f, nil
}
