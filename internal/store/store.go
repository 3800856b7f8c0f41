// Package store persists imported census and coordinate tables and the
// history of imports.
package store

import (
	"context"

	"github.com/sells-group/housing-cli/internal/model"
)

// ImportFilter narrows ListImports.
type ImportFilter struct {
	Kind  model.ImportKind `json:"kind,omitempty"`
	Limit int              `json:"limit,omitempty"`
}

// Store is the persistence interface for imported tables.
type Store interface {
	// ReplaceCensus swaps the stored census table for records atomically.
	ReplaceCensus(ctx context.Context, source string, records []model.CensusRecord) (*model.Import, error)
	// UpsertCoordinates inserts or updates coordinates keyed by neighborhood.
	UpsertCoordinates(ctx context.Context, source string, records []model.CoordinateRecord) (*model.Import, error)

	// Census returns the stored census in import order.
	Census(ctx context.Context) ([]model.CensusRecord, error)
	// Coordinates returns the stored coordinates ordered by their position in
	// the latest import that wrote them, then by name.
	Coordinates(ctx context.Context) ([]model.CoordinateRecord, error)

	// ListImports returns imports newest first.
	ListImports(ctx context.Context, filter ImportFilter) ([]model.Import, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultImportLimit = 50

func (f ImportFilter) limit() int {
	if f.Limit <= 0 {
		return defaultImportLimit
	}
	return f.Limit
}
