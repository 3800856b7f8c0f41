package chart

import grob "github.com/MetalBlueberry/go-plotly/graph_objects"

// Trace types not covered by the typed graph objects used here. They satisfy
// grob.Trace and marshal to the plotly.js schema directly.

const (
	traceSunburst      grob.TraceType = "sunburst"
	traceParcats       grob.TraceType = "parcats"
	traceParcoords     grob.TraceType = "parcoords"
	traceScattermapbox grob.TraceType = "scattermapbox"
)

type colorLine struct {
	Color      []*float64 `json:"color"`
	Colorscale string     `json:"colorscale,omitempty"`
	Showscale  bool       `json:"showscale"`
	Colorbar   *colorbar  `json:"colorbar,omitempty"`
}

type colorbar struct {
	Title *colorbarTitle `json:"title,omitempty"`
}

type colorbarTitle struct {
	Text string `json:"text"`
}

type sunburstTrace struct {
	Type         grob.TraceType  `json:"type"`
	IDs          []string        `json:"ids"`
	Labels       []string        `json:"labels"`
	Parents      []string        `json:"parents"`
	Values       []float64       `json:"values"`
	Branchvalues string          `json:"branchvalues,omitempty"`
	Marker       *sunburstMarker `json:"marker,omitempty"`
}

type sunburstMarker struct {
	Colors     []*float64 `json:"colors"`
	Colorscale string     `json:"colorscale,omitempty"`
	Showscale  bool       `json:"showscale"`
	Colorbar   *colorbar  `json:"colorbar,omitempty"`
}

func (t *sunburstTrace) GetType() grob.TraceType { return t.Type }

type dimension struct {
	Label  string `json:"label"`
	Values any    `json:"values"`
}

type parcatsTrace struct {
	Type       grob.TraceType `json:"type"`
	Dimensions []dimension    `json:"dimensions"`
	Line       *colorLine     `json:"line,omitempty"`
}

func (t *parcatsTrace) GetType() grob.TraceType { return t.Type }

type parcoordsTrace struct {
	Type       grob.TraceType `json:"type"`
	Dimensions []dimension    `json:"dimensions"`
	Line       *colorLine     `json:"line,omitempty"`
}

func (t *parcoordsTrace) GetType() grob.TraceType { return t.Type }

type mapboxMarker struct {
	Size       []float64  `json:"size"`
	Color      []*float64 `json:"color"`
	Colorscale string     `json:"colorscale,omitempty"`
	Showscale  bool       `json:"showscale"`
	Colorbar   *colorbar  `json:"colorbar,omitempty"`
}

type scattermapboxTrace struct {
	Type          grob.TraceType `json:"type"`
	Lat           []float64      `json:"lat"`
	Lon           []float64      `json:"lon"`
	Text          []string       `json:"text"`
	Mode          string         `json:"mode"`
	Hovertemplate string         `json:"hovertemplate,omitempty"`
	Marker        *mapboxMarker  `json:"marker,omitempty"`
}

func (t *scattermapboxTrace) GetType() grob.TraceType { return t.Type }
