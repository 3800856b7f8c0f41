package model

// YearValue is a single mean keyed by year.
type YearValue struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// YearMeans holds the per-year means of every numeric census column.
type YearMeans struct {
	Year             int      `json:"year"`
	HousingUnits     *float64 `json:"housing_units"`
	SalePriceSqrFoot *float64 `json:"sale_price_sqr_foot"`
	GrossRent        *float64 `json:"gross_rent"`
}

// NeighborhoodMeans holds the per-neighborhood means of every numeric census column.
type NeighborhoodMeans struct {
	Neighborhood     string   `json:"neighborhood"`
	HousingUnits     *float64 `json:"housing_units"`
	SalePriceSqrFoot *float64 `json:"sale_price_sqr_foot"`
	GrossRent        *float64 `json:"gross_rent"`
}

// YearNeighborhoodMeans holds the means for one (year, neighborhood) group.
type YearNeighborhoodMeans struct {
	Year             int      `json:"year"`
	Neighborhood     string   `json:"neighborhood"`
	HousingUnits     *float64 `json:"housing_units"`
	SalePriceSqrFoot *float64 `json:"sale_price_sqr_foot"`
	GrossRent        *float64 `json:"gross_rent"`
}

// NeighborhoodLocation is a per-neighborhood mean row joined with its coordinates.
type NeighborhoodLocation struct {
	Neighborhood     string   `json:"neighborhood"`
	Latitude         float64  `json:"lat"`
	Longitude        float64  `json:"lon"`
	HousingUnits     *float64 `json:"housing_units"`
	SalePriceSqrFoot *float64 `json:"sale_price_sqr_foot"`
	GrossRent        *float64 `json:"gross_rent"`
}
