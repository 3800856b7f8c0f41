package aggregate

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/housing-cli/internal/model"
)

// Summary is every derived table, computed once and shared by all consumers.
type Summary struct {
	HousingUnitsPerYear    []model.YearValue             `json:"housing_units_per_year"`
	GrossRentPerYear       []model.YearValue             `json:"gross_rent_per_year"`
	SalePricePerYear       []model.YearValue             `json:"sale_price_per_year"`
	MeanByYearNeighborhood []model.YearNeighborhoodMeans `json:"mean_by_year_neighborhood"`
	MeanByNeighborhood     []model.NeighborhoodMeans     `json:"mean_by_neighborhood"`
	TopNeighborhoods       []model.NeighborhoodMeans     `json:"top_neighborhoods"`
	Locations              []model.NeighborhoodLocation  `json:"locations"`
	TopCensus              []model.CensusRecord          `json:"top_census"`
}

// Compute derives every table. topN <= 0 uses DefaultTopN.
func Compute(census []model.CensusRecord, coords []model.CoordinateRecord, topN int) *Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	byYear := MeanByYear(census)
	byHood := MeanByNeighborhood(census)
	top := TopN(byHood, topN)

	return &Summary{
		HousingUnitsPerYear:    yearValues(byYear, func(m model.YearMeans) *float64 { return m.HousingUnits }),
		GrossRentPerYear:       yearValues(byYear, func(m model.YearMeans) *float64 { return m.GrossRent }),
		SalePricePerYear:       yearValues(byYear, func(m model.YearMeans) *float64 { return m.SalePriceSqrFoot }),
		MeanByYearNeighborhood: MeanByYearNeighborhood(census),
		MeanByNeighborhood:     byHood,
		TopNeighborhoods:       top,
		Locations:              JoinCoordinates(byHood, coords),
		TopCensus:              FilterNeighborhoods(census, Names(top)),
	}
}

// Present returns the non-nil values of vs.
func Present(vs []model.YearValue) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if v.Value != nil {
			out = append(out, *v.Value)
		}
	}
	return out
}

// YRange pads [min, max] of xs by half a sample standard deviation on each
// side. Fewer than two values get no padding; ok is false for none.
func YRange(xs []float64) (lo, hi float64, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	if len(xs) < 2 {
		return lo, hi, true
	}
	pad := stat.StdDev(xs, nil) / 2
	return lo - pad, hi + pad, true
}
