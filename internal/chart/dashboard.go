package chart

import (
	"html/template"
	"io"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/rotisserie/eris"
)

// Dashboard is a titled set of tabs, each holding charts.
type Dashboard struct {
	Title     string
	PlotlyURL string
	Tabs      []Tab
}

// Tab is one dashboard page. Empty is shown when the tab has no charts.
type Tab struct {
	ID      string
	Title   string
	Heading string
	Charts  []*Chart
	Empty   string
}

var tabLayout = []struct {
	id, title, heading, empty string
	charts                    []string
}{
	{"average-prices", "Average Prices", "Average Prices", "", []string{HousingUnits, GrossRent, SalePrice}},
	{"top-10", "Top 10", "Top 10 Most Expensive Neighborhoods", "", []string{TopNeighborhoods, Sunburst}},
	{"map", "Map", "Map of San Francisco Neighborhoods", "No neighborhood matched a coordinate.", []string{NeighborhoodMap}},
	{"neighborhoods", "Neighborhoods", "Neighborhoods", "", []string{RentByNeighborhood, PriceByNeighborhood}},
	{"parallel", "Parallel Comparison", "Parallel Comparison", "", []string{ParallelCategories, ParallelCoordinates}},
}

// Layout arranges charts into the standard tabs. Charts missing from the
// slice are left out of their tab.
func Layout(title, plotlyURL string, charts []*Chart) *Dashboard {
	byName := make(map[string]*Chart, len(charts))
	for _, c := range charts {
		byName[c.Name] = c
	}
	d := &Dashboard{Title: title, PlotlyURL: plotlyURL}
	for _, l := range tabLayout {
		tab := Tab{ID: l.id, Title: l.title, Heading: l.heading}
		for _, name := range l.charts {
			if c, ok := byName[name]; ok {
				tab.Charts = append(tab.Charts, c)
			}
		}
		if len(tab.Charts) == 0 {
			tab.Empty = l.empty
		}
		d.Tabs = append(d.Tabs, tab)
	}
	return d
}

type chartScript struct {
	ID     string    `json:"id"`
	Fig    *grob.Fig `json:"fig"`
	Groups []string  `json:"groups,omitempty"`
}

type dashboardView struct {
	*Dashboard
	Scripts []chartScript
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
body { font-family: sans-serif; margin: 1.5rem; }
.tabs button { padding: .5rem 1rem; border: 1px solid #ccc; background: #f5f5f5; cursor: pointer; }
.tabs button.active { background: #fff; font-weight: bold; }
.panel { border: 1px solid #ccc; padding: 1rem; margin-top: -1px; }
.chart { margin-bottom: 2rem; }
.empty { color: #777; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<nav class="tabs">{{range $i, $t := .Tabs}}<button type="button" data-tab="{{$t.ID}}"{{if eq $i 0}} class="active"{{end}}>{{$t.Title}}</button>{{end}}</nav>
{{range $i, $t := .Tabs}}<section class="panel" id="{{$t.ID}}"{{if ne $i 0}} hidden{{end}}>
<h2>{{$t.Heading}}</h2>
{{range $c := $t.Charts}}<div class="chart">
{{with $c.GroupNames}}<label>Neighborhood <select data-chart="chart-{{$c.Name}}">{{range .}}<option>{{.}}</option>{{end}}</select></label>{{end}}
<div id="chart-{{$c.Name}}"></div>
</div>
{{end}}{{if $t.Empty}}<p class="empty">{{$t.Empty}}</p>{{end}}
</section>
{{end}}
<script>
const charts = {{.Scripts}};
const byId = {};
function applyGroup(c, group) {
  Plotly.restyle(c.id, {visible: c.groups.map(g => g === group)});
}
for (const c of charts) {
  byId[c.id] = c;
  Plotly.newPlot(c.id, c.fig.data || [], c.fig.layout || {}, {responsive: true});
  if (c.groups && c.groups.length) applyGroup(c, c.groups[0]);
}
document.querySelectorAll("select[data-chart]").forEach(sel => {
  sel.addEventListener("change", () => applyGroup(byId[sel.dataset.chart], sel.value));
});
document.querySelectorAll(".tabs button").forEach(btn => {
  btn.addEventListener("click", () => {
    document.querySelectorAll(".tabs button").forEach(b => b.classList.toggle("active", b === btn));
    document.querySelectorAll(".panel").forEach(p => { p.hidden = p.id !== btn.dataset.tab; });
    document.querySelectorAll("#" + btn.dataset.tab + " .chart > div[id]").forEach(el => Plotly.Plots.resize(el));
  });
});
</script>
</body>
</html>
`))

// Render writes the dashboard page.
func (d *Dashboard) Render(w io.Writer) error {
	view := dashboardView{Dashboard: d, Scripts: []chartScript{}}
	for _, t := range d.Tabs {
		for _, c := range t.Charts {
			view.Scripts = append(view.Scripts, chartScript{ID: "chart-" + c.Name, Fig: c.Fig, Groups: c.Groups})
		}
	}
	if err := dashboardTmpl.Execute(w, view); err != nil {
		return eris.Wrap(err, "chart: render dashboard")
	}
	return nil
}

// WriteFile renders the dashboard to path.
func (d *Dashboard) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "chart: create dashboard file")
	}
	if err := d.Render(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "chart: close dashboard file")
	}
	return nil
}
