// Package aggregate derives the summary tables that feed every chart from the
// census and coordinate record sets. All functions are pure: inputs are never
// mutated and equal inputs always give equal outputs.
package aggregate

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/housing-cli/internal/model"
)

// DefaultTopN is the number of neighborhoods kept by TopNeighborhoods.
const DefaultTopN = 10

// columnValues collects the present values of each numeric column for one group.
type columnValues struct {
	units []float64
	price []float64
	rent  []float64
}

func (c *columnValues) add(r model.CensusRecord) {
	if r.HousingUnits != nil {
		c.units = append(c.units, float64(*r.HousingUnits))
	}
	if r.SalePriceSqrFoot != nil {
		c.price = append(c.price, *r.SalePriceSqrFoot)
	}
	if r.GrossRent != nil {
		c.rent = append(c.rent, *r.GrossRent)
	}
}

// mean returns nil for a group with no present values.
func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := stat.Mean(xs, nil)
	return &m
}

type yearHood struct {
	year int
	hood string
}

// groupBy buckets records by key and returns the keys in ascending order.
func groupBy[K comparable](census []model.CensusRecord, key func(model.CensusRecord) K, less func(a, b K) int) ([]K, map[K]*columnValues) {
	groups := make(map[K]*columnValues)
	var keys []K
	for _, r := range census {
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &columnValues{}
			groups[k] = g
			keys = append(keys, k)
		}
		g.add(r)
	}
	slices.SortFunc(keys, less)
	return keys, groups
}

// MeanByYear returns the mean of every numeric column per year, ascending by year.
func MeanByYear(census []model.CensusRecord) []model.YearMeans {
	keys, groups := groupBy(census, func(r model.CensusRecord) int { return r.Year }, cmp.Compare[int])
	out := make([]model.YearMeans, 0, len(keys))
	for _, y := range keys {
		g := groups[y]
		out = append(out, model.YearMeans{
			Year:             y,
			HousingUnits:     mean(g.units),
			SalePriceSqrFoot: mean(g.price),
			GrossRent:        mean(g.rent),
		})
	}
	return out
}

// MeanByNeighborhood returns the mean of every numeric column per
// neighborhood, in byte-wise name order. Year is a grouping key elsewhere and
// is not averaged.
func MeanByNeighborhood(census []model.CensusRecord) []model.NeighborhoodMeans {
	keys, groups := groupBy(census, func(r model.CensusRecord) string { return r.Neighborhood }, cmp.Compare[string])
	out := make([]model.NeighborhoodMeans, 0, len(keys))
	for _, n := range keys {
		g := groups[n]
		out = append(out, model.NeighborhoodMeans{
			Neighborhood:     n,
			HousingUnits:     mean(g.units),
			SalePriceSqrFoot: mean(g.price),
			GrossRent:        mean(g.rent),
		})
	}
	return out
}

// MeanByYearNeighborhood returns the means per (year, neighborhood), ordered
// by year then name.
func MeanByYearNeighborhood(census []model.CensusRecord) []model.YearNeighborhoodMeans {
	keys, groups := groupBy(census,
		func(r model.CensusRecord) yearHood { return yearHood{r.Year, r.Neighborhood} },
		func(a, b yearHood) int {
			if c := cmp.Compare(a.year, b.year); c != 0 {
				return c
			}
			return cmp.Compare(a.hood, b.hood)
		},
	)
	out := make([]model.YearNeighborhoodMeans, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		out = append(out, model.YearNeighborhoodMeans{
			Year:             k.year,
			Neighborhood:     k.hood,
			HousingUnits:     mean(g.units),
			SalePriceSqrFoot: mean(g.price),
			GrossRent:        mean(g.rent),
		})
	}
	return out
}

func yearValues(byYear []model.YearMeans, pick func(model.YearMeans) *float64) []model.YearValue {
	out := make([]model.YearValue, len(byYear))
	for i, m := range byYear {
		out[i] = model.YearValue{Year: m.Year, Value: pick(m)}
	}
	return out
}

// HousingUnitsPerYear returns the mean housing units per year.
func HousingUnitsPerYear(census []model.CensusRecord) []model.YearValue {
	return yearValues(MeanByYear(census), func(m model.YearMeans) *float64 { return m.HousingUnits })
}

// GrossRentPerYear returns the mean gross rent per year.
func GrossRentPerYear(census []model.CensusRecord) []model.YearValue {
	return yearValues(MeanByYear(census), func(m model.YearMeans) *float64 { return m.GrossRent })
}

// SalePricePerYear returns the mean sale price per square foot per year.
func SalePricePerYear(census []model.CensusRecord) []model.YearValue {
	return yearValues(MeanByYear(census), func(m model.YearMeans) *float64 { return m.SalePriceSqrFoot })
}

// TopN orders means by mean sale price per square foot, highest first, and
// keeps the first n. The sort is stable so equal prices keep their input
// order; neighborhoods without a price sort last.
func TopN(means []model.NeighborhoodMeans, n int) []model.NeighborhoodMeans {
	sorted := slices.Clone(means)
	slices.SortStableFunc(sorted, func(a, b model.NeighborhoodMeans) int {
		switch {
		case a.SalePriceSqrFoot == nil && b.SalePriceSqrFoot == nil:
			return 0
		case a.SalePriceSqrFoot == nil:
			return 1
		case b.SalePriceSqrFoot == nil:
			return -1
		}
		return cmp.Compare(*b.SalePriceSqrFoot, *a.SalePriceSqrFoot)
	})
	n = max(n, 0)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopNeighborhoods returns the n most expensive neighborhoods by mean sale
// price per square foot.
func TopNeighborhoods(census []model.CensusRecord, n int) []model.NeighborhoodMeans {
	return TopN(MeanByNeighborhood(census), n)
}

// Names returns the neighborhood names of means, in order.
func Names(means []model.NeighborhoodMeans) []string {
	out := make([]string, len(means))
	for i, m := range means {
		out[i] = m.Neighborhood
	}
	return out
}

// JoinCoordinates inner-joins per-neighborhood means with coordinates on the
// exact neighborhood name. Rows follow the coordinates order; unmatched rows
// on either side are dropped.
func JoinCoordinates(means []model.NeighborhoodMeans, coords []model.CoordinateRecord) []model.NeighborhoodLocation {
	byName := make(map[string]model.NeighborhoodMeans, len(means))
	for _, m := range means {
		byName[m.Neighborhood] = m
	}
	out := make([]model.NeighborhoodLocation, 0, len(coords))
	for _, c := range coords {
		m, ok := byName[c.Neighborhood]
		if !ok {
			continue
		}
		out = append(out, model.NeighborhoodLocation{
			Neighborhood:     c.Neighborhood,
			Latitude:         c.Latitude,
			Longitude:        c.Longitude,
			HousingUnits:     m.HousingUnits,
			SalePriceSqrFoot: m.SalePriceSqrFoot,
			GrossRent:        m.GrossRent,
		})
	}
	return out
}

// FilterNeighborhoods keeps the census records whose neighborhood is in names,
// preserving input order.
func FilterNeighborhoods(census []model.CensusRecord, names []string) []model.CensusRecord {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	out := make([]model.CensusRecord, 0)
	for _, r := range census {
		if _, ok := keep[r.Neighborhood]; ok {
			out = append(out, r)
		}
	}
	return out
}
