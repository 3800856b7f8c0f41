package export

import (
	"cmp"
	"os"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/housing-cli/internal/chart"
)

// Export artifact kinds, alongside chart.KindHTML and chart.KindPNG.
const (
	KindCSV       = "csv"
	KindXLSX      = "xlsx"
	KindGeoJSON   = "geojson"
	KindShapefile = "shapefile"
	KindDashboard = "dashboard"
)

// Manifest lists the inputs of a run and every file it wrote.
type Manifest struct {
	GeneratedAt   time.Time        `yaml:"generated_at"`
	Census        string           `yaml:"census"`
	Coordinates   string           `yaml:"coordinates"`
	CensusRows    int              `yaml:"census_rows"`
	Neighborhoods int              `yaml:"neighborhoods"`
	Artifacts     []chart.Artifact `yaml:"artifacts"`
}

// Add records an artifact.
func (m *Manifest) Add(name, kind, path string) {
	m.Artifacts = append(m.Artifacts, chart.Artifact{Chart: name, Kind: kind, Path: path})
}

// Write saves the manifest as YAML with artifacts sorted by path.
func (m *Manifest) Write(path string) error {
	slices.SortFunc(m.Artifacts, func(a, b chart.Artifact) int { return cmp.Compare(a.Path, b.Path) })
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "export: marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "export: write manifest")
	}
	return nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read manifest")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "export: parse manifest")
	}
	return &m, nil
}
