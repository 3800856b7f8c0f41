package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/housing-cli/internal/model"
)

// FeatureCollection builds a point feature per location, with the mean
// columns as properties. Absent means become null properties.
func FeatureCollection(locs []model.NeighborhoodLocation) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(locs))}
	if len(locs) == 0 {
		return fc
	}
	bounds := geom.NewBounds(geom.XY)
	for _, l := range locs {
		pt := geom.NewPointFlat(geom.XY, []float64{l.Longitude, l.Latitude})
		bounds.Extend(pt)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: pt,
			Properties: map[string]any{
				model.ColNeighborhood:     l.Neighborhood,
				model.ColHousingUnits:     l.HousingUnits,
				model.ColSalePriceSqrFoot: l.SalePriceSqrFoot,
				model.ColGrossRent:        l.GrossRent,
			},
		})
	}
	fc.BBox = bounds
	return fc
}

// GeoJSON writes locs as a GeoJSON FeatureCollection.
func GeoJSON(path string, locs []model.NeighborhoodLocation) error {
	data, err := json.Marshal(FeatureCollection(locs))
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
