package loader

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/fetcher"
	"github.com/sells-group/housing-cli/internal/model"
)

// Accepted header spellings for the coordinate columns, in preference order.
var (
	latAliases = []string{"lat", "latitude"}
	lonAliases = []string{"lon", "lng", "long", "longitude"}
)

// LoadCoordinates reads a coordinates table with the default Loader.
func LoadCoordinates(ctx context.Context, path string) ([]model.CoordinateRecord, error) {
	return New(Options{}).Coordinates(ctx, path)
}

// Coordinates reads the neighborhood coordinates table at src. Neighborhood
// names must be unique.
func (l *Loader) Coordinates(ctx context.Context, src string) ([]model.CoordinateRecord, error) {
	t, err := l.readTable(ctx, src)
	if err != nil {
		return nil, err
	}
	records, err := parseCoordinates(src, t)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loader: coordinates loaded", zap.String("source", src), zap.Int("rows", len(records)))
	return records, nil
}

func parseCoordinates(src string, t *fetcher.Table) ([]model.CoordinateRecord, error) {
	idx := t.Index()
	hoodCol, ok := idx[ColNeighborhood]
	if !ok {
		return nil, &ParseError{Path: src, Column: ColNeighborhood, Msg: "missing required column"}
	}
	latCol, ok := firstColumn(idx, latAliases)
	if !ok {
		return nil, &ParseError{Path: src, Column: "lat", Msg: "missing required column"}
	}
	lonCol, ok := firstColumn(idx, lonAliases)
	if !ok {
		return nil, &ParseError{Path: src, Column: "lon", Msg: "missing required column"}
	}

	seen := make(map[string]int, len(t.Rows))
	records := make([]model.CoordinateRecord, 0, len(t.Rows))
	for n, row := range t.Rows {
		rowNum := n + 1

		hood := cell(row, hoodCol)
		if hood == "" {
			return nil, &ParseError{Path: src, Row: rowNum, Column: ColNeighborhood, Msg: "empty neighborhood"}
		}
		if first, dup := seen[hood]; dup {
			return nil, &ParseError{
				Path: src, Row: rowNum, Column: ColNeighborhood,
				Msg: "duplicate neighborhood " + strconv.Quote(hood) + " (first at row " + strconv.Itoa(first) + ")",
			}
		}
		seen[hood] = rowNum

		lat, err := parseCoordinate(cell(row, latCol))
		if err != nil {
			return nil, &ParseError{Path: src, Row: rowNum, Column: fetcher.NormalizeHeader(t.Header[latCol]), Msg: err.Error()}
		}
		lon, err := parseCoordinate(cell(row, lonCol))
		if err != nil {
			return nil, &ParseError{Path: src, Row: rowNum, Column: fetcher.NormalizeHeader(t.Header[lonCol]), Msg: err.Error()}
		}

		records = append(records, model.CoordinateRecord{Neighborhood: hood, Latitude: lat, Longitude: lon})
	}
	return records, nil
}

func firstColumn(idx map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func parseCoordinate(s string) (float64, error) {
	if isMissing(s) {
		return 0, numberError("missing coordinate")
	}
	v, err := parseOptionalFloat(s)
	if err != nil {
		return 0, err
	}
	return *v, nil
}
