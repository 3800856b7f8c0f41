package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coordinateUpsert = UpsertConfig{
	Table:        "housing.coordinates",
	Columns:      []string{"neighborhood", "lat", "lon"},
	ConflictKeys: []string{"neighborhood"},
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, coordinateUpsert, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "housing.coordinates",
		ConflictKeys: []string{"neighborhood"},
	}, [][]any{{"Bayview"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "housing.coordinates",
		Columns: []string{"neighborhood", "lat"},
	}, [][]any{{"Bayview", 1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_housing_coordinates" \(LIKE "housing"."coordinates" INCLUDING DEFAULTS\) ON COMMIT DROP`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_housing_coordinates"}, coordinateUpsert.Columns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "housing"."coordinates" \("neighborhood", "lat", "lon"\) SELECT .+ ON CONFLICT \("neighborhood"\) DO UPDATE SET "lat" = EXCLUDED."lat", "lon" = EXCLUDED."lon"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	rows := [][]any{{"Alamo Square", 37.79, -122.40}, {"Bayview", 37.73, -122.39}}
	n, err := BulkUpsert(context.Background(), mock, coordinateUpsert, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_KeysOnlyDoesNothing(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	cfg := UpsertConfig{Table: "names", Columns: []string{"neighborhood"}, ConflictKeys: []string{"neighborhood"}}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_names"}, cfg.Columns).WillReturnResult(1)
	mock.ExpectExec(`ON CONFLICT \("neighborhood"\) DO NOTHING`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, err = BulkUpsert(context.Background(), mock, cfg, [][]any{{"Bayview"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_housing_coordinates"}, coordinateUpsert.Columns).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, coordinateUpsert, [][]any{{"Bayview", 1.0, 2.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table for housing.coordinates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

	_, err = BulkUpsert(context.Background(), mock, coordinateUpsert, [][]any{{"Bayview", 1.0, 2.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"year", "neighborhood", "gross_rent"`, quoteAndJoin([]string{"year", "neighborhood", "gross_rent"}))
}
