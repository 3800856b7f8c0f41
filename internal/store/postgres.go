package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

const (
	censusTable      = "housing.census"
	coordinatesTable = "housing.coordinates"
)

var censusColumns = []string{"ord", "year", "neighborhood", "housing_units", "sale_price_sqr_foot", "gross_rent"}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 0
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS housing;

CREATE TABLE IF NOT EXISTS housing.census (
	ord                 INTEGER NOT NULL,
	year                INTEGER NOT NULL,
	neighborhood        TEXT NOT NULL,
	housing_units       BIGINT,
	sale_price_sqr_foot DOUBLE PRECISION,
	gross_rent          DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS housing.coordinates (
	neighborhood TEXT PRIMARY KEY,
	lat          DOUBLE PRECISION NOT NULL,
	lon          DOUBLE PRECISION NOT NULL,
	ord          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS housing.imports (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	source     TEXT NOT NULL,
	rows       BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_census_ord ON housing.census(ord);
CREATE INDEX IF NOT EXISTS idx_imports_kind ON housing.imports(kind);
CREATE INDEX IF NOT EXISTS idx_imports_created_at ON housing.imports(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// ReplaceCensus clears the table and reloads it with COPY in one transaction.
func (s *PostgresStore) ReplaceCensus(ctx context.Context, source string, records []model.CensusRecord) (*model.Import, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM housing.census`); err != nil {
		return nil, eris.Wrap(err, "postgres: clear census")
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{i, r.Year, r.Neighborhood, r.HousingUnits, r.SalePriceSqrFoot, r.GrossRent}
	}
	n, err := db.CopyFrom(ctx, tx, censusTable, censusColumns, rows)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load census")
	}

	imp, err := insertImport(ctx, tx, model.ImportCensus, source, n)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit census")
	}
	return imp, nil
}

// UpsertCoordinates merges records through db.BulkUpsert.
func (s *PostgresStore) UpsertCoordinates(ctx context.Context, source string, records []model.CoordinateRecord) (*model.Import, error) {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.Neighborhood, r.Latitude, r.Longitude, i}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        coordinatesTable,
		Columns:      []string{"neighborhood", "lat", "lon", "ord"},
		ConflictKeys: []string{"neighborhood"},
	}, rows)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: upsert coordinates")
	}
	return insertImport(ctx, s.pool, model.ImportCoordinates, source, n)
}

func insertImport(ctx context.Context, q db.Querier, kind model.ImportKind, source string, rows int64) (*model.Import, error) {
	imp := &model.Import{
		ID:        uuid.New().String(),
		Kind:      kind,
		Source:    source,
		Rows:      rows,
		CreatedAt: time.Now().UTC(),
	}
	_, err := q.Exec(ctx,
		`INSERT INTO housing.imports (id, kind, source, rows, created_at) VALUES ($1, $2, $3, $4, $5)`,
		imp.ID, string(imp.Kind), imp.Source, imp.Rows, imp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert import")
	}
	return imp, nil
}

func (s *PostgresStore) Census(ctx context.Context) ([]model.CensusRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT year, neighborhood, housing_units, sale_price_sqr_foot, gross_rent FROM housing.census ORDER BY ord`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query census")
	}
	defer rows.Close()

	var out []model.CensusRecord
	for rows.Next() {
		var r model.CensusRecord
		if err := rows.Scan(&r.Year, &r.Neighborhood, &r.HousingUnits, &r.SalePriceSqrFoot, &r.GrossRent); err != nil {
			return nil, eris.Wrap(err, "postgres: scan census")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate census")
}

func (s *PostgresStore) Coordinates(ctx context.Context) ([]model.CoordinateRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT neighborhood, lat, lon FROM housing.coordinates ORDER BY ord, neighborhood`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query coordinates")
	}
	defer rows.Close()

	var out []model.CoordinateRecord
	for rows.Next() {
		var r model.CoordinateRecord
		if err := rows.Scan(&r.Neighborhood, &r.Latitude, &r.Longitude); err != nil {
			return nil, eris.Wrap(err, "postgres: scan coordinates")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate coordinates")
}

func (s *PostgresStore) ListImports(ctx context.Context, filter ImportFilter) ([]model.Import, error) {
	query := `SELECT id::text, kind, source, rows, created_at FROM housing.imports`
	args := []any{}
	if filter.Kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, string(filter.Kind))
	}
	args = append(args, filter.limit())
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list imports")
	}
	defer rows.Close()

	var out []model.Import
	for rows.Next() {
		var imp model.Import
		var kind string
		if err := rows.Scan(&imp.ID, &kind, &imp.Source, &imp.Rows, &imp.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import")
		}
		imp.Kind = model.ImportKind(kind)
		out = append(out, imp)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate imports")
}
