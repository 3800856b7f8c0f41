package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/housing-cli/internal/loader"
	"github.com/sells-group/housing-cli/internal/model"
	"github.com/sells-group/housing-cli/internal/store"
)

// inputs are the two tables every command starts from.
type inputs struct {
	CensusSource      string
	CoordinatesSource string
	Census            []model.CensusRecord
	Coordinates       []model.CoordinateRecord
}

// pathOr returns flag when set, otherwise the configured default.
func pathOr(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

func newLoader() *loader.Loader {
	return loader.New(loader.Options{
		TempDir: cfg.Input.TempDir,
		Timeout: time.Duration(cfg.Input.TimeoutSecs) * time.Second,
		CSV:     cfg.Input.CSV.Options(),
	})
}

// loadFiles reads both tables from paths or URLs concurrently.
func loadFiles(ctx context.Context, l *loader.Loader, censusSrc, coordsSrc string) (*inputs, error) {
	in := &inputs{CensusSource: censusSrc, CoordinatesSource: coordsSrc}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := l.Census(gctx, censusSrc)
		in.Census = recs
		return err
	})
	g.Go(func() error {
		recs, err := l.Coordinates(gctx, coordsSrc)
		in.Coordinates = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// loadStored reads both tables from st.
func loadStored(ctx context.Context, st store.Store, label string) (*inputs, error) {
	census, err := st.Census(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "read stored census")
	}
	coords, err := st.Coordinates(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "read stored coordinates")
	}
	if len(census) == 0 {
		return nil, eris.New("store holds no census rows; run `housing-cli import` first")
	}
	return &inputs{
		CensusSource:      label,
		CoordinatesSource: label,
		Census:            census,
		Coordinates:       coords,
	}, nil
}

// loadInputs reads the tables from files or the store according to
// input.source. Flag values override the configured paths.
func loadInputs(ctx context.Context, censusFlag, coordsFlag string) (*inputs, error) {
	start := time.Now()

	var (
		in  *inputs
		err error
	)
	if cfg.Input.Source == "store" {
		st, serr := openStore(ctx)
		if serr != nil {
			return nil, serr
		}
		defer st.Close() //nolint:errcheck
		in, err = loadStored(ctx, st, "store:"+cfg.Store.Driver)
	} else {
		in, err = loadFiles(ctx, newLoader(),
			pathOr(censusFlag, cfg.Input.Census),
			pathOr(coordsFlag, cfg.Input.Coordinates))
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("inputs loaded",
		zap.String("census", in.CensusSource),
		zap.String("coordinates", in.CoordinatesSource),
		zap.Int("census_rows", len(in.Census)),
		zap.Int("coordinate_rows", len(in.Coordinates)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return in, nil
}
