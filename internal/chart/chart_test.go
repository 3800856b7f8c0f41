package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-cli/internal/aggregate"
	"github.com/sells-group/housing-cli/internal/model"
)

func sampleSummary() *aggregate.Summary {
	census := []model.CensusRecord{
		{Year: 2010, Neighborhood: "Alamo Square", HousingUnits: model.Int64(100), SalePriceSqrFoot: model.Float64(300), GrossRent: model.Float64(1000)},
		{Year: 2010, Neighborhood: "Bayview", HousingUnits: model.Int64(100), SalePriceSqrFoot: model.Float64(200), GrossRent: model.Float64(1000)},
		{Year: 2011, Neighborhood: "Alamo Square", HousingUnits: model.Int64(200), SalePriceSqrFoot: model.Float64(500), GrossRent: model.Float64(1500)},
		{Year: 2011, Neighborhood: "Bayview", HousingUnits: model.Int64(200), SalePriceSqrFoot: model.Float64(100), GrossRent: model.Float64(1500)},
	}
	coords := []model.CoordinateRecord{
		{Neighborhood: "Alamo Square", Latitude: 37.79, Longitude: -122.40},
		{Neighborhood: "Bayview", Latitude: 37.73, Longitude: -122.39},
	}
	return aggregate.Compute(census, coords, 10)
}

// figJSON round-trips a figure through JSON into generic maps.
func figJSON(t *testing.T, fig *grob.Fig) map[string]any {
	t.Helper()
	data, err := json.Marshal(fig)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func traces(t *testing.T, fig map[string]any) []map[string]any {
	t.Helper()
	raw, ok := fig["data"].([]any)
	require.True(t, ok, "figure has no data")
	out := make([]map[string]any, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]any)
	}
	return out
}

func title(fig map[string]any) string {
	layout, _ := fig["layout"].(map[string]any)
	tt, _ := layout["title"].(map[string]any)
	s, _ := tt["text"].(string)
	return s
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Sale Price Sqr Foot", Label("sale_price_sqr_foot"))
	assert.Equal(t, "Gross Rent", Label("gross_rent"))
	assert.Equal(t, "Year", Label("year"))
}

func TestBuild_AllCharts(t *testing.T) {
	charts := Build(sampleSummary(), Options{})
	var names []string
	for _, c := range charts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		HousingUnits, GrossRent, SalePrice, PriceByNeighborhood, TopNeighborhoods,
		RentByNeighborhood, NeighborhoodMap, ParallelCategories, ParallelCoordinates, Sunburst,
	}, names)
}

func TestBuild_SkipsMapWithoutLocations(t *testing.T) {
	s := sampleSummary()
	s.Locations = nil
	for _, c := range Build(s, Options{}) {
		assert.NotEqual(t, NeighborhoodMap, c.Name)
	}
	assert.Nil(t, NeighborhoodMapChart(nil, Options{}))
}

func TestHousingUnitsChart(t *testing.T) {
	c := HousingUnitsChart(sampleSummary().HousingUnitsPerYear)
	fig := figJSON(t, c.Fig)
	assert.Equal(t, "Housing Units in San Francisco from 2010 to 2016", title(fig))

	tr := traces(t, fig)
	require.Len(t, tr, 1)
	assert.Equal(t, "bar", tr[0]["type"])
	assert.Equal(t, []any{2010.0, 2011.0}, tr[0]["x"])
	assert.Equal(t, []any{100.0, 200.0}, tr[0]["y"])

	yaxis := fig["layout"].(map[string]any)["yaxis"].(map[string]any)
	rng := yaxis["range"].([]any)
	require.Len(t, rng, 2)
	// sample sd of {100, 200} is 70.71
	assert.InDelta(t, 100-35.35533905932738, rng[0].(float64), 1e-9)
	assert.InDelta(t, 200+35.35533905932738, rng[1].(float64), 1e-9)
}

func TestLineCharts(t *testing.T) {
	s := sampleSummary()

	rent := figJSON(t, GrossRentChart(s.GrossRentPerYear).Fig)
	assert.Equal(t, "Average Gross Rent by Year", title(rent))
	tr := traces(t, rent)
	require.Len(t, tr, 1)
	assert.Equal(t, "lines", tr[0]["mode"])
	assert.Equal(t, []any{1000.0, 1500.0}, tr[0]["y"])

	price := figJSON(t, SalePriceChart(s.SalePricePerYear).Fig)
	assert.Equal(t, "Average Price per SqFt by Year", title(price))
	assert.Equal(t, []any{250.0, 300.0}, traces(t, price)[0]["y"])
}

func TestLineChart_AbsentValuesAreNull(t *testing.T) {
	c := SalePriceChart([]model.YearValue{{Year: 2010, Value: model.Float64(1)}, {Year: 2011}})
	tr := traces(t, figJSON(t, c.Fig))
	assert.Equal(t, []any{1.0, nil}, tr[0]["y"])
}

func TestPriceByNeighborhoodChart_Groups(t *testing.T) {
	c := PriceByNeighborhoodChart(sampleSummary().MeanByYearNeighborhood)
	assert.Equal(t, []string{"Alamo Square", "Bayview"}, c.Groups)
	assert.Equal(t, []string{"Alamo Square", "Bayview"}, c.GroupNames())

	tr := traces(t, figJSON(t, c.Fig))
	require.Len(t, tr, 2)
	assert.Equal(t, "Alamo Square", tr[0]["name"])
	assert.Equal(t, []any{2010.0, 2011.0}, tr[0]["x"])
	assert.Equal(t, []any{300.0, 500.0}, tr[0]["y"])
	assert.Equal(t, []any{200.0, 100.0}, tr[1]["y"])
}

func TestRentByNeighborhoodChart(t *testing.T) {
	c := RentByNeighborhoodChart(sampleSummary().MeanByYearNeighborhood)
	assert.Equal(t, []string{"Alamo Square", "Alamo Square", "Bayview", "Bayview"}, c.Groups)
	assert.Equal(t, []string{"Alamo Square", "Bayview"}, c.GroupNames())

	fig := figJSON(t, c.Fig)
	assert.Equal(t, "Average Rent by Neighborhood", title(fig))
	assert.Equal(t, "group", fig["layout"].(map[string]any)["barmode"])
	assert.Equal(t, grob.BarBarmodeGroup, c.Fig.Layout.Barmode)

	tr := traces(t, fig)
	require.Len(t, tr, 4)
	assert.Equal(t, "gross_rent", tr[0]["name"])
	assert.Equal(t, "sale_price_sqr_foot", tr[1]["name"])
	assert.Equal(t, []any{1000.0, 1500.0}, tr[0]["y"])
}

func TestTopNeighborhoodsChart(t *testing.T) {
	c := TopNeighborhoodsChart(sampleSummary().TopNeighborhoods)
	fig := figJSON(t, c.Fig)
	assert.Equal(t, "Top 2 Expensive Neighborhoods in SFO", title(fig))
	tr := traces(t, fig)
	assert.Equal(t, []any{"Alamo Square", "Bayview"}, tr[0]["x"])
	assert.Equal(t, []any{400.0, 150.0}, tr[0]["y"])
}

func TestNeighborhoodMapChart(t *testing.T) {
	c := NeighborhoodMapChart(sampleSummary().Locations, Options{MapboxToken: "pk.test", MapboxZoom: 12})
	require.NotNil(t, c)
	fig := figJSON(t, c.Fig)
	assert.Equal(t, "Average Sale Price per SqFt and Gross Rent in San Francisco", title(fig))

	tr := traces(t, fig)
	require.Len(t, tr, 1)
	assert.Equal(t, "scattermapbox", tr[0]["type"])
	assert.Equal(t, []any{37.79, 37.73}, tr[0]["lat"])
	assert.Equal(t, []any{"Alamo Square", "Bayview"}, tr[0]["text"])

	marker := tr[0]["marker"].(map[string]any)
	assert.Equal(t, []any{20.0, 10.0}, marker["size"])
	assert.Equal(t, []any{1250.0, 1250.0}, marker["color"])

	mapbox := fig["layout"].(map[string]any)["mapbox"].(map[string]any)
	assert.Equal(t, "pk.test", mapbox["accesstoken"])
	assert.Equal(t, "open-street-map", mapbox["style"])
	assert.Equal(t, 12.0, mapbox["zoom"])
}

func TestMarkerSize(t *testing.T) {
	assert.Equal(t, 4.0, markerSize(nil, 10))
	assert.Equal(t, 4.0, markerSize(model.Float64(5), 0))
	assert.Equal(t, 20.0, markerSize(model.Float64(10), 10))
	assert.Equal(t, 12.0, markerSize(model.Float64(5), 10))
}

func TestParallelCharts(t *testing.T) {
	top := sampleSummary().TopNeighborhoods

	cats := traces(t, figJSON(t, ParallelCategoriesChart(top).Fig))
	require.Len(t, cats, 1)
	assert.Equal(t, "parcats", cats[0]["type"])
	assert.Len(t, cats[0]["dimensions"], 4)
	line := cats[0]["line"].(map[string]any)
	assert.Equal(t, []any{400.0, 150.0}, line["color"])

	coords := traces(t, figJSON(t, ParallelCoordinatesChart(top).Fig))
	require.Len(t, coords, 1)
	assert.Equal(t, "parcoords", coords[0]["type"])
	dims := coords[0]["dimensions"].([]any)
	require.Len(t, dims, 3)
	assert.Equal(t, "sale_price_sqr_foot", dims[0].(map[string]any)["label"])
}

func TestSunburstChart(t *testing.T) {
	c := SunburstChart(sampleSummary().TopCensus)
	fig := figJSON(t, c.Fig)
	assert.Equal(t, "Cost Analysis of Most Expensive neighborhoods in San Francisco per Year", title(fig))

	tr := traces(t, fig)[0]
	assert.Equal(t, "sunburst", tr["type"])
	assert.Equal(t, []any{"2010/Alamo Square", "2010/Bayview", "2011/Alamo Square", "2011/Bayview", "2010", "2011"}, tr["ids"])
	assert.Equal(t, []any{"2010", "2010", "2011", "2011", "", ""}, tr["parents"])
	assert.Equal(t, []any{300.0, 200.0, 500.0, 100.0, 500.0, 600.0}, tr["values"])
	marker := tr["marker"].(map[string]any)
	assert.Equal(t, "Blues", marker["colorscale"])
	colors := marker["colors"].([]any)
	assert.InDelta(t, 1000.0, colors[4].(float64), 1e-9)
	assert.InDelta(t, 1500.0, colors[5].(float64), 1e-9)
}

func TestLayout_Tabs(t *testing.T) {
	d := Layout("Dash", "https://cdn.example/plotly.js", Build(sampleSummary(), Options{}))
	require.Len(t, d.Tabs, 5)
	var titles []string
	for _, tab := range d.Tabs {
		titles = append(titles, tab.Title)
	}
	assert.Equal(t, []string{"Average Prices", "Top 10", "Map", "Neighborhoods", "Parallel Comparison"}, titles)
	assert.Len(t, d.Tabs[0].Charts, 3)
	assert.Equal(t, NeighborhoodMap, d.Tabs[2].Charts[0].Name)
	assert.Empty(t, d.Tabs[2].Empty)
}

func TestLayout_EmptyMapTab(t *testing.T) {
	s := sampleSummary()
	s.Locations = nil
	d := Layout("Dash", "", Build(s, Options{}))
	assert.Empty(t, d.Tabs[2].Charts)
	assert.NotEmpty(t, d.Tabs[2].Empty)
}

func TestDashboardRender(t *testing.T) {
	d := Layout("SF <Housing>", "https://cdn.example/plotly.js", Build(sampleSummary(), Options{}))
	var buf bytes.Buffer
	require.NoError(t, d.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "SF &lt;Housing&gt;")
	assert.Contains(t, out, `<script src="https://cdn.example/plotly.js"></script>`)
	assert.Contains(t, out, `data-tab="parallel"`)
	assert.Contains(t, out, `<select data-chart="chart-price_by_neighborhood">`)
	assert.Contains(t, out, `<option>Bayview</option>`)
	assert.Contains(t, out, `id="chart-sunburst"`)
	assert.Contains(t, out, "Housing Units in San Francisco from 2010 to 2016")
}

func TestDashboardWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.html")
	require.NoError(t, Layout("Dash", "", nil).WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "const charts = []")
}

type fakeSnapshotter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSnapshotter) Snapshot(_ context.Context, htmlPath, pngPath string, _, _ int) error {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(htmlPath))
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(pngPath, []byte("png"), 0o644)
}

func TestWriteCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	snap := &fakeSnapshotter{}
	charts := Build(sampleSummary(), Options{})

	arts, err := WriteCharts(context.Background(), charts, WriteOptions{
		Dir:         dir,
		Images:      []string{Sunburst, ParallelCategories, "no_such_chart"},
		Concurrency: 3,
		Snapshotter: snap,
	})
	require.NoError(t, err)
	assert.Len(t, arts, len(charts)+2)
	assert.ElementsMatch(t, []string{"sunburst.html", "parallel_categories.html"}, snap.calls)

	for i := 1; i < len(arts); i++ {
		assert.Less(t, arts[i-1].Path, arts[i].Path)
	}
	for _, a := range arts {
		_, statErr := os.Stat(a.Path)
		assert.NoError(t, statErr, a.Path)
	}
	assert.FileExists(t, filepath.Join(dir, "sunburst.png"))
	assert.NoFileExists(t, filepath.Join(dir, "housing_units_per_year.png"))
}

func TestWriteCharts_NoSnapshotter(t *testing.T) {
	dir := t.TempDir()
	arts, err := WriteCharts(context.Background(), Build(sampleSummary(), Options{}), WriteOptions{
		Dir:    dir,
		Images: []string{Sunburst},
	})
	require.NoError(t, err)
	for _, a := range arts {
		assert.Equal(t, KindHTML, a.Kind)
	}
}

func TestWriteCharts_SnapshotErrorSkipsPNG(t *testing.T) {
	dir := t.TempDir()
	snap := &fakeSnapshotter{err: errors.New("chrome missing")}
	charts := Build(sampleSummary(), Options{})
	arts, err := WriteCharts(context.Background(), charts, WriteOptions{
		Dir:         dir,
		Images:      []string{Sunburst, ParallelCategories},
		Snapshotter: snap,
	})
	require.NoError(t, err)
	require.Len(t, arts, len(charts))
	for _, a := range arts {
		assert.Equal(t, KindHTML, a.Kind)
		assert.FileExists(t, a.Path)
	}
	assert.Len(t, snap.calls, 2)
	assert.NoFileExists(t, filepath.Join(dir, "sunburst.png"))
}

func TestWriteCharts_NonFiniteValueIsError(t *testing.T) {
	c := HousingUnitsChart([]model.YearValue{
		{Year: 2010, Value: model.Float64(math.Inf(1))},
	})
	var err error
	require.NotPanics(t, func() {
		_, err = WriteCharts(context.Background(), []*Chart{c}, WriteOptions{Dir: t.TempDir()})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart: encode housing_units_per_year")
}

func TestWriteCharts_FileMode(t *testing.T) {
	dir := t.TempDir()
	arts, err := WriteCharts(context.Background(), []*Chart{SunburstChart(sampleSummary().TopCensus)}, WriteOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, arts, 1)
	info, err := os.Stat(arts[0].Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestNewChromeSnapshotter_Defaults(t *testing.T) {
	s := NewChromeSnapshotter(0)
	assert.Equal(t, 30.0, s.Timeout.Seconds())
	assert.Positive(t, s.Settle)
}
