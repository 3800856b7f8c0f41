// Package chart turns aggregate tables into plotly figures, standalone chart
// pages, PNG snapshots and a tabbed dashboard.
package chart

import (
	"strings"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Chart names. They double as output file stems.
const (
	HousingUnits        = "housing_units_per_year"
	GrossRent           = "gross_rent_per_year"
	SalePrice           = "sale_price_per_year"
	PriceByNeighborhood = "price_by_neighborhood"
	TopNeighborhoods    = "top_neighborhoods"
	RentByNeighborhood  = "rent_by_neighborhood"
	NeighborhoodMap     = "neighborhood_map"
	ParallelCategories  = "parallel_categories"
	ParallelCoordinates = "parallel_coordinates"
	Sunburst            = "sunburst"
)

// Chart is a named figure. When Groups is set it holds one selector value per
// trace in Fig.Data and only the traces of the selected group are shown.
type Chart struct {
	Name   string
	Title  string
	Fig    *grob.Fig
	Groups []string
	Width  int
	Height int
}

// GroupNames returns the distinct selector values in first-seen order.
func (c *Chart) GroupNames() []string {
	seen := make(map[string]struct{}, len(c.Groups))
	var out []string
	for _, g := range c.Groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

var titleCaser = cases.Title(language.English)

// Label turns a column name such as sale_price_sqr_foot into "Sale Price Sqr Foot".
func Label(column string) string {
	return titleCaser.String(strings.ReplaceAll(column, "_", " "))
}

type figOpt func(*grob.Layout)

func withXLabel(label string) figOpt {
	return func(l *grob.Layout) {
		if l.Xaxis == nil {
			l.Xaxis = &grob.LayoutXaxis{}
		}
		l.Xaxis.Title = &grob.LayoutXaxisTitle{Text: label}
	}
}

func withYLabel(label string) figOpt {
	return func(l *grob.Layout) {
		if l.Yaxis == nil {
			l.Yaxis = &grob.LayoutYaxis{}
		}
		l.Yaxis.Title = &grob.LayoutYaxisTitle{Text: label}
	}
}

func withYRange(lo, hi float64) figOpt {
	return func(l *grob.Layout) {
		if l.Yaxis == nil {
			l.Yaxis = &grob.LayoutYaxis{}
		}
		l.Yaxis.Range = []float64{lo, hi}
	}
}

func withSize(w, h int) figOpt {
	return func(l *grob.Layout) {
		if w > 0 {
			l.Width = float64(w)
		}
		if h > 0 {
			l.Height = float64(h)
		}
	}
}

func withLegend() figOpt {
	return func(l *grob.Layout) { l.Showlegend = grob.True }
}

func newFig(title string, opts ...figOpt) *grob.Fig {
	lay := &grob.Layout{Title: &grob.LayoutTitle{Text: title}}
	for _, o := range opts {
		o(lay)
	}
	return &grob.Fig{Layout: lay}
}
