package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-cli/internal/model"
)

// Shapefile attribute names; dBase limits them to 10 characters.
const (
	fieldName  = "name"
	fieldUnits = "units"
	fieldPrice = "price"
	fieldRent  = "rent"
)

const floatSize = 19

var shapeFields = []shp.Field{
	shp.StringField(fieldName, 80),
	shp.FloatField(fieldUnits, floatSize, 2),
	shp.FloatField(fieldPrice, floatSize, 6),
	shp.FloatField(fieldRent, floatSize, 2),
}

var blankFloat = strings.Repeat(" ", floatSize)

// Shapefile writes locs as a POINT shapefile (path plus .shx and .dbf
// siblings). A missing .shp extension is added. Absent means are written as
// blank fields.
func Shapefile(path string, locs []model.NeighborhoodLocation) error {
	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		path += ".shp"
	}
	base := path[:len(path)-len(".shp")]

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	werr := writeShapes(w, locs)
	w.Close()
	if werr != nil {
		return werr
	}
	return renameDBF(base)
}

func writeShapes(w *shp.Writer, locs []model.NeighborhoodLocation) error {
	if err := w.SetFields(shapeFields); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}
	for _, l := range locs {
		n := int(w.Write(&shp.Point{X: l.Longitude, Y: l.Latitude}))
		attrs := []any{l.Neighborhood, floatAttr(l.HousingUnits), floatAttr(l.SalePriceSqrFoot), floatAttr(l.GrossRent)}
		for i, v := range attrs {
			if err := w.WriteAttribute(n, i, v); err != nil {
				return eris.Wrapf(err, "export: write %s attribute %d", l.Neighborhood, i)
			}
		}
	}
	return nil
}

// renameDBF moves the attribute table go-shp writes as base+"dbf" to
// base+".dbf".
func renameDBF(base string) error {
	written := base + "dbf"
	if _, err := os.Stat(written); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return eris.Wrap(err, "export: stat attribute table")
	}
	if err := os.Rename(written, base+".dbf"); err != nil {
		return eris.Wrap(err, "export: rename attribute table")
	}
	return nil
}

func floatAttr(v *float64) any {
	if v == nil {
		return blankFloat
	}
	return *v
}
