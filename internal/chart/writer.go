package chart

import (
	"cmp"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/MetalBlueberry/go-plotly/offline"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Artifact kinds.
const (
	KindHTML = "html"
	KindPNG  = "png"
)

// Artifact is a file written for a chart.
type Artifact struct {
	Chart string `yaml:"chart" json:"chart"`
	Kind  string `yaml:"kind" json:"kind"`
	Path  string `yaml:"path" json:"path"`
}

// WriteOptions controls WriteCharts.
type WriteOptions struct {
	Dir         string
	Images      []string // chart names to snapshot as PNG
	Concurrency int
	Snapshotter Snapshotter // nil disables PNG output
}

// WriteCharts writes a standalone HTML page per chart and, for the charts
// named in Images, a PNG snapshot of that page. Artifacts are returned sorted
// by path. A failed snapshot is logged and its PNG skipped.
func WriteCharts(ctx context.Context, charts []*Chart, opts WriteOptions) ([]Artifact, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "chart: create output dir")
	}

	wantPNG := make(map[string]bool, len(opts.Images))
	for _, name := range opts.Images {
		wantPNG[name] = true
	}
	for _, name := range opts.Images {
		if !slices.ContainsFunc(charts, func(c *Chart) bool { return c.Name == name }) {
			zap.L().Warn("chart: image requested for unknown or skipped chart", zap.String("chart", name))
		}
	}

	var (
		mu        sync.Mutex
		artifacts []Artifact
	)
	record := func(a Artifact) {
		mu.Lock()
		artifacts = append(artifacts, a)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for _, c := range charts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			htmlPath := filepath.Join(opts.Dir, c.Name+".html")
			if err := writeHTML(c, htmlPath); err != nil {
				return err
			}
			record(Artifact{Chart: c.Name, Kind: KindHTML, Path: htmlPath})

			if !wantPNG[c.Name] || opts.Snapshotter == nil {
				return nil
			}
			pngPath := filepath.Join(opts.Dir, c.Name+".png")
			if err := opts.Snapshotter.Snapshot(gctx, htmlPath, pngPath, c.Width, c.Height); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("chart: snapshot failed, skipping png",
					zap.String("chart", c.Name),
					zap.Error(err),
				)
				_ = os.Remove(pngPath)
				return nil
			}
			record(Artifact{Chart: c.Name, Kind: KindPNG, Path: pngPath})
			zap.L().Debug("chart: snapshot written", zap.String("chart", c.Name), zap.String("path", pngPath))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(artifacts, func(a, b Artifact) int { return cmp.Compare(a.Path, b.Path) })
	return artifacts, nil
}

// writeHTML renders a standalone plotly page. The figure is encoded first
// because offline.ToHtml panics on values JSON cannot represent.
func writeHTML(c *Chart, path string) error {
	if _, err := json.Marshal(c.Fig); err != nil {
		return eris.Wrapf(err, "chart: encode %s", c.Name)
	}
	_ = os.Remove(path)
	offline.ToHtml(c.Fig, path)
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "chart: write %s", path)
	}
	if info.Size() == 0 {
		return eris.Errorf("chart: write %s: empty file", path)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		return eris.Wrapf(err, "chart: chmod %s", path)
	}
	return nil
}
