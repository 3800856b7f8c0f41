// Package model defines the record and aggregate types shared across packages.
package model

import "time"

// Census column names.
const (
	ColYear             = "year"
	ColNeighborhood     = "neighborhood"
	ColHousingUnits     = "housing_units"
	ColSalePriceSqrFoot = "sale_price_sqr_foot"
	ColGrossRent        = "gross_rent"
)

// CensusRecord is one row of the yearly per-neighborhood housing census.
// Numeric fields are nil when the source cell was empty.
type CensusRecord struct {
	Year             int      `json:"year"`
	Neighborhood     string   `json:"neighborhood"`
	HousingUnits     *int64   `json:"housing_units"`
	SalePriceSqrFoot *float64 `json:"sale_price_sqr_foot"`
	GrossRent        *float64 `json:"gross_rent"`
}

// CoordinateRecord maps a neighborhood name to its location.
type CoordinateRecord struct {
	Neighborhood string  `json:"neighborhood"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`
}

// ImportKind names the table an import loaded.
type ImportKind string

const (
	ImportCensus      ImportKind = "census"
	ImportCoordinates ImportKind = "coordinates"
)

// Import records one load of a source file into the store.
type Import struct {
	ID        string     `json:"id"`
	Kind      ImportKind `json:"kind"`
	Source    string     `json:"source"`
	Rows      int64      `json:"rows"`
	CreatedAt time.Time  `json:"created_at"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
