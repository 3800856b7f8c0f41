package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/housing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS census (
	ord                 INTEGER NOT NULL,
	year                INTEGER NOT NULL,
	neighborhood        TEXT NOT NULL,
	housing_units       INTEGER,
	sale_price_sqr_foot REAL,
	gross_rent          REAL
);

CREATE TABLE IF NOT EXISTS coordinates (
	neighborhood TEXT PRIMARY KEY,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	ord          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS imports (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	source     TEXT NOT NULL,
	rows       INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_census_ord ON census(ord);
CREATE INDEX IF NOT EXISTS idx_imports_kind ON imports(kind);
CREATE INDEX IF NOT EXISTS idx_imports_created_at ON imports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceCensus(ctx context.Context, source string, records []model.CensusRecord) (*model.Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM census`); err != nil {
		return nil, eris.Wrap(err, "sqlite: clear census")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO census (ord, year, neighborhood, housing_units, sale_price_sqr_foot, gross_rent) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare census insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.Year, r.Neighborhood, r.HousingUnits, r.SalePriceSqrFoot, r.GrossRent); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert census row %d", i+1)
		}
	}

	imp, err := insertImportTx(ctx, tx, model.ImportCensus, source, int64(len(records)))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit census")
	}
	return imp, nil
}

func (s *SQLiteStore) UpsertCoordinates(ctx context.Context, source string, records []model.CoordinateRecord) (*model.Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coordinates (neighborhood, lat, lon, ord) VALUES (?, ?, ?, ?)
		ON CONFLICT(neighborhood) DO UPDATE SET lat = excluded.lat, lon = excluded.lon, ord = excluded.ord`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare coordinates upsert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Neighborhood, r.Latitude, r.Longitude, i); err != nil {
			return nil, eris.Wrapf(err, "sqlite: upsert coordinates %q", r.Neighborhood)
		}
	}

	imp, err := insertImportTx(ctx, tx, model.ImportCoordinates, source, int64(len(records)))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit coordinates")
	}
	return imp, nil
}

func insertImportTx(ctx context.Context, tx *sql.Tx, kind model.ImportKind, source string, rows int64) (*model.Import, error) {
	imp := &model.Import{
		ID:        uuid.New().String(),
		Kind:      kind,
		Source:    source,
		Rows:      rows,
		CreatedAt: time.Now().UTC(),
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, kind, source, rows, created_at) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, string(imp.Kind), imp.Source, imp.Rows, imp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import")
	}
	return imp, nil
}

func (s *SQLiteStore) Census(ctx context.Context) ([]model.CensusRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, neighborhood, housing_units, sale_price_sqr_foot, gross_rent FROM census ORDER BY ord`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query census")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CensusRecord
	for rows.Next() {
		var r model.CensusRecord
		if err := rows.Scan(&r.Year, &r.Neighborhood, &r.HousingUnits, &r.SalePriceSqrFoot, &r.GrossRent); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan census")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate census")
}

func (s *SQLiteStore) Coordinates(ctx context.Context) ([]model.CoordinateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT neighborhood, lat, lon FROM coordinates ORDER BY ord, neighborhood`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query coordinates")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CoordinateRecord
	for rows.Next() {
		var r model.CoordinateRecord
		if err := rows.Scan(&r.Neighborhood, &r.Latitude, &r.Longitude); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan coordinates")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate coordinates")
}

func (s *SQLiteStore) ListImports(ctx context.Context, filter ImportFilter) ([]model.Import, error) {
	query := `SELECT id, kind, source, rows, created_at FROM imports`
	var args []any
	if filter.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list imports")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Import
	for rows.Next() {
		var imp model.Import
		var kind string
		if err := rows.Scan(&imp.ID, &kind, &imp.Source, &imp.Rows, &imp.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import")
		}
		imp.Kind = model.ImportKind(kind)
		out = append(out, imp)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate imports")
}
