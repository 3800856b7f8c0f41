package chart

import (
	"fmt"
	"slices"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"

	"github.com/sells-group/housing-cli/internal/aggregate"
	"github.com/sells-group/housing-cli/internal/model"
)

// Options carries presentation settings that do not come from the data.
type Options struct {
	MapboxToken string
	MapboxStyle string // default "open-street-map"
	MapboxZoom  float64
}

// Build renders every chart for the summary. The map is omitted when no
// neighborhood matched a coordinate.
func Build(s *aggregate.Summary, opts Options) []*Chart {
	charts := []*Chart{
		HousingUnitsChart(s.HousingUnitsPerYear),
		GrossRentChart(s.GrossRentPerYear),
		SalePriceChart(s.SalePricePerYear),
		PriceByNeighborhoodChart(s.MeanByYearNeighborhood),
		TopNeighborhoodsChart(s.TopNeighborhoods),
		RentByNeighborhoodChart(s.MeanByYearNeighborhood),
	}
	if m := NeighborhoodMapChart(s.Locations, opts); m != nil {
		charts = append(charts, m)
	}
	return append(charts,
		ParallelCategoriesChart(s.TopNeighborhoods),
		ParallelCoordinatesChart(s.TopNeighborhoods),
		SunburstChart(s.TopCensus),
	)
}

func splitYears(vs []model.YearValue) ([]int, []*float64) {
	years := make([]int, len(vs))
	vals := make([]*float64, len(vs))
	for i, v := range vs {
		years[i] = v.Year
		vals[i] = v.Value
	}
	return years, vals
}

// HousingUnitsChart is a bar chart of mean housing units per year with the
// y axis padded by half a standard deviation.
func HousingUnitsChart(units []model.YearValue) *Chart {
	const title = "Housing Units in San Francisco from 2010 to 2016"
	opts := []figOpt{withXLabel("Year"), withYLabel(Label(model.ColHousingUnits))}
	if lo, hi, ok := aggregate.YRange(aggregate.Present(units)); ok {
		opts = append(opts, withYRange(lo, hi))
	}
	fig := newFig(title, opts...)

	years, vals := splitYears(units)
	fig.AddTraces(&grob.Bar{
		Type:   grob.TraceTypeBar,
		Name:   model.ColHousingUnits,
		X:      years,
		Y:      vals,
		Marker: &grob.BarMarker{Color: "green"},
	})
	return &Chart{Name: HousingUnits, Title: title, Fig: fig}
}

func lineChart(name, title, column, color string, vs []model.YearValue) *Chart {
	fig := newFig(title, withXLabel("Year"), withYLabel(Label(column)))
	years, vals := splitYears(vs)
	tr := &grob.Scatter{
		Type: grob.TraceTypeScatter,
		Name: column,
		X:    years,
		Y:    vals,
		Mode: grob.ScatterModeLines,
	}
	if color != "" {
		tr.Line = &grob.ScatterLine{Color: color}
	}
	fig.AddTraces(tr)
	return &Chart{Name: name, Title: title, Fig: fig}
}

// GrossRentChart is a line chart of mean gross rent per year.
func GrossRentChart(rent []model.YearValue) *Chart {
	return lineChart(GrossRent, "Average Gross Rent by Year", model.ColGrossRent, "turquoise", rent)
}

// SalePriceChart is a line chart of mean sale price per square foot per year.
func SalePriceChart(price []model.YearValue) *Chart {
	return lineChart(SalePrice, "Average Price per SqFt by Year", model.ColSalePriceSqrFoot, "", price)
}

// hoodSeries splits (year, neighborhood) means into per-neighborhood series,
// neighborhoods in name order.
type hoodSeries struct {
	name  string
	years []int
	rows  []model.YearNeighborhoodMeans
}

func seriesByNeighborhood(rows []model.YearNeighborhoodMeans) []*hoodSeries {
	byName := make(map[string]*hoodSeries)
	var names []string
	for _, r := range rows {
		s, ok := byName[r.Neighborhood]
		if !ok {
			s = &hoodSeries{name: r.Neighborhood}
			byName[r.Neighborhood] = s
			names = append(names, r.Neighborhood)
		}
		s.years = append(s.years, r.Year)
		s.rows = append(s.rows, r)
	}
	slices.Sort(names)
	out := make([]*hoodSeries, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}

func pick(rows []model.YearNeighborhoodMeans, f func(model.YearNeighborhoodMeans) *float64) []*float64 {
	out := make([]*float64, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

// PriceByNeighborhoodChart is a line per neighborhood of mean price per
// square foot by year, switched with the neighborhood selector.
func PriceByNeighborhoodChart(rows []model.YearNeighborhoodMeans) *Chart {
	const title = "Average Price per SqFt by Neighborhood"
	fig := newFig(title, withXLabel("Year"), withYLabel("Avg Price/SqFt"))
	c := &Chart{Name: PriceByNeighborhood, Title: title, Fig: fig}
	for _, s := range seriesByNeighborhood(rows) {
		fig.AddTraces(&grob.Scatter{
			Type: grob.TraceTypeScatter,
			Name: s.name,
			X:    s.years,
			Y:    pick(s.rows, func(r model.YearNeighborhoodMeans) *float64 { return r.SalePriceSqrFoot }),
			Mode: grob.ScatterModeLines,
		})
		c.Groups = append(c.Groups, s.name)
	}
	return c
}

// RentByNeighborhoodChart is a grouped bar chart of mean gross rent and sale
// price per square foot by year, one neighborhood at a time.
func RentByNeighborhoodChart(rows []model.YearNeighborhoodMeans) *Chart {
	const title = "Average Rent by Neighborhood"
	fig := newFig(title, withXLabel("Year"), withYLabel("USD"), withSize(0, 450), withLegend())
	fig.Layout.Barmode = grob.BarBarmodeGroup
	c := &Chart{Name: RentByNeighborhood, Title: title, Fig: fig, Height: 450}
	for _, s := range seriesByNeighborhood(rows) {
		fig.AddTraces(
			&grob.Bar{
				Type: grob.TraceTypeBar,
				Name: model.ColGrossRent,
				X:    s.years,
				Y:    pick(s.rows, func(r model.YearNeighborhoodMeans) *float64 { return r.GrossRent }),
			},
			&grob.Bar{
				Type: grob.TraceTypeBar,
				Name: model.ColSalePriceSqrFoot,
				X:    s.years,
				Y:    pick(s.rows, func(r model.YearNeighborhoodMeans) *float64 { return r.SalePriceSqrFoot }),
			},
		)
		c.Groups = append(c.Groups, s.name, s.name)
	}
	return c
}

func priceValues(top []model.NeighborhoodMeans) []float64 {
	var out []float64
	for _, m := range top {
		if m.SalePriceSqrFoot != nil {
			out = append(out, *m.SalePriceSqrFoot)
		}
	}
	return out
}

// TopNeighborhoodsChart is a bar chart of the most expensive neighborhoods.
func TopNeighborhoodsChart(top []model.NeighborhoodMeans) *Chart {
	title := fmt.Sprintf("Top %d Expensive Neighborhoods in SFO", len(top))
	opts := []figOpt{withXLabel("Neighborhood"), withYLabel("Avg Sale Price per Square Foot")}
	if lo, hi, ok := aggregate.YRange(priceValues(top)); ok {
		opts = append(opts, withYRange(lo, hi))
	}
	fig := newFig(title, opts...)

	names := aggregate.Names(top)
	prices := make([]*float64, len(top))
	for i, m := range top {
		prices[i] = m.SalePriceSqrFoot
	}
	fig.AddTraces(&grob.Bar{
		Type: grob.TraceTypeBar,
		Name: model.ColSalePriceSqrFoot,
		X:    names,
		Y:    prices,
	})
	return &Chart{Name: TopNeighborhoods, Title: title, Fig: fig}
}

// NeighborhoodMapChart places each neighborhood on a map, marker size by
// sale price and color by gross rent. It returns nil for no locations.
func NeighborhoodMapChart(locs []model.NeighborhoodLocation, opts Options) *Chart {
	if len(locs) == 0 {
		return nil
	}
	const title = "Average Sale Price per SqFt and Gross Rent in San Francisco"
	const width, height = 1200, 650

	style := opts.MapboxStyle
	if style == "" {
		style = "open-street-map"
	}
	zoom := opts.MapboxZoom
	if zoom == 0 {
		zoom = 11
	}

	tr := &scattermapboxTrace{
		Type:          traceScattermapbox,
		Mode:          "markers",
		Hovertemplate: "<b>%{text}</b><br>Lat=%{lat}<br>Lon=%{lon}<br>Gross Rent=%{marker.color}<extra></extra>",
		Marker: &mapboxMarker{
			Colorscale: "Plasma",
			Showscale:  true,
			Colorbar:   &colorbar{Title: &colorbarTitle{Text: Label(model.ColGrossRent)}},
		},
	}

	var maxPrice, sumLat, sumLon float64
	for _, l := range locs {
		if l.SalePriceSqrFoot != nil {
			maxPrice = max(maxPrice, *l.SalePriceSqrFoot)
		}
		sumLat += l.Latitude
		sumLon += l.Longitude
	}
	for _, l := range locs {
		tr.Lat = append(tr.Lat, l.Latitude)
		tr.Lon = append(tr.Lon, l.Longitude)
		tr.Text = append(tr.Text, l.Neighborhood)
		tr.Marker.Size = append(tr.Marker.Size, markerSize(l.SalePriceSqrFoot, maxPrice))
		tr.Marker.Color = append(tr.Marker.Color, l.GrossRent)
	}

	fig := newFig(title, withSize(width, height))
	fig.Layout.Mapbox = &grob.LayoutMapbox{
		Accesstoken: opts.MapboxToken,
		Style:       style,
		Zoom:        zoom,
		Center: &grob.LayoutMapboxCenter{
			Lat: sumLat / float64(len(locs)),
			Lon: sumLon / float64(len(locs)),
		},
	}
	fig.AddTraces(tr)
	return &Chart{Name: NeighborhoodMap, Title: title, Fig: fig, Width: width, Height: height}
}

// markerSize scales price into [4, 20] pixels.
func markerSize(price *float64, maxPrice float64) float64 {
	const minSize, maxSize = 4, 20
	if price == nil || maxPrice <= 0 || *price <= 0 {
		return minSize
	}
	return minSize + (maxSize-minSize)*(*price/maxPrice)
}

func topColumns(top []model.NeighborhoodMeans) (price, units, rent []*float64) {
	for _, m := range top {
		price = append(price, m.SalePriceSqrFoot)
		units = append(units, m.HousingUnits)
		rent = append(rent, m.GrossRent)
	}
	return price, units, rent
}

func priceColorLine(price []*float64) *colorLine {
	return &colorLine{
		Color:      price,
		Colorscale: "Plasma",
		Showscale:  true,
		Colorbar:   &colorbar{Title: &colorbarTitle{Text: model.ColSalePriceSqrFoot}},
	}
}

// ParallelCategoriesChart compares the top neighborhoods across every column,
// colored by sale price.
func ParallelCategoriesChart(top []model.NeighborhoodMeans) *Chart {
	const width = 1200
	price, units, rent := topColumns(top)
	fig := newFig("", withSize(width, 0))
	fig.AddTraces(&parcatsTrace{
		Type: traceParcats,
		Dimensions: []dimension{
			{Label: model.ColNeighborhood, Values: aggregate.Names(top)},
			{Label: model.ColSalePriceSqrFoot, Values: price},
			{Label: model.ColHousingUnits, Values: units},
			{Label: model.ColGrossRent, Values: rent},
		},
		Line: priceColorLine(price),
	})
	return &Chart{Name: ParallelCategories, Title: "Parallel Categories", Fig: fig, Width: width}
}

// ParallelCoordinatesChart compares the numeric columns of the top
// neighborhoods, colored by sale price.
func ParallelCoordinatesChart(top []model.NeighborhoodMeans) *Chart {
	const width = 1200
	price, units, rent := topColumns(top)
	fig := newFig("", withSize(width, 0))
	fig.AddTraces(&parcoordsTrace{
		Type: traceParcoords,
		Dimensions: []dimension{
			{Label: model.ColSalePriceSqrFoot, Values: price},
			{Label: model.ColHousingUnits, Values: units},
			{Label: model.ColGrossRent, Values: rent},
		},
		Line: priceColorLine(price),
	})
	return &Chart{Name: ParallelCoordinates, Title: "Parallel Coordinates", Fig: fig, Width: width}
}

// SunburstChart nests neighborhoods under years. Leaf size is the mean sale
// price, color the mean gross rent; a year takes the price-weighted rent of
// its neighborhoods.
func SunburstChart(census []model.CensusRecord) *Chart {
	const title = "Cost Analysis of Most Expensive neighborhoods in San Francisco per Year"
	const height = 800

	tr := &sunburstTrace{
		Type:         traceSunburst,
		Branchvalues: "total",
		Marker: &sunburstMarker{
			Colorscale: "Blues",
			Showscale:  true,
			Colorbar:   &colorbar{Title: &colorbarTitle{Text: model.ColGrossRent}},
		},
	}

	type yearTotal struct {
		value, weighted, weight float64
	}
	var years []int
	totals := make(map[int]*yearTotal)

	for _, r := range aggregate.MeanByYearNeighborhood(census) {
		yt, ok := totals[r.Year]
		if !ok {
			yt = &yearTotal{}
			totals[r.Year] = yt
			years = append(years, r.Year)
		}
		var v float64
		if r.SalePriceSqrFoot != nil {
			v = *r.SalePriceSqrFoot
		}
		yt.value += v
		if r.GrossRent != nil && v > 0 {
			yt.weighted += *r.GrossRent * v
			yt.weight += v
		}

		yearID := fmt.Sprint(r.Year)
		tr.IDs = append(tr.IDs, yearID+"/"+r.Neighborhood)
		tr.Labels = append(tr.Labels, r.Neighborhood)
		tr.Parents = append(tr.Parents, yearID)
		tr.Values = append(tr.Values, v)
		tr.Marker.Colors = append(tr.Marker.Colors, r.GrossRent)
	}

	for _, y := range years {
		yt := totals[y]
		yearID := fmt.Sprint(y)
		tr.IDs = append(tr.IDs, yearID)
		tr.Labels = append(tr.Labels, yearID)
		tr.Parents = append(tr.Parents, "")
		tr.Values = append(tr.Values, yt.value)
		var color *float64
		if yt.weight > 0 {
			c := yt.weighted / yt.weight
			color = &c
		}
		tr.Marker.Colors = append(tr.Marker.Colors, color)
	}

	fig := newFig(title, withSize(0, height))
	fig.AddTraces(tr)
	return &Chart{Name: Sunburst, Title: title, Fig: fig, Height: height}
}
