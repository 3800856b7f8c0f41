package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-cli/internal/model"
)

func rec(year int, hood string, units int64, price, rent float64) model.CensusRecord {
	return model.CensusRecord{
		Year:             year,
		Neighborhood:     hood,
		HousingUnits:     model.Int64(units),
		SalePriceSqrFoot: model.Float64(price),
		GrossRent:        model.Float64(rent),
	}
}

func sampleCensus() []model.CensusRecord {
	return []model.CensusRecord{
		rec(2011, "Bayview", 200, 100, 1500),
		rec(2010, "Alamo Square", 100, 300, 1000),
		rec(2010, "Bayview", 100, 200, 1000),
		rec(2011, "Alamo Square", 200, 500, 1500),
		rec(2011, "Cow Hollow", 200, 400, 1500),
	}
}

func TestMeanByYear(t *testing.T) {
	got := MeanByYear(sampleCensus())
	require.Len(t, got, 2)

	assert.Equal(t, 2010, got[0].Year)
	assert.InDelta(t, 100, *got[0].HousingUnits, 1e-9)
	assert.InDelta(t, 250, *got[0].SalePriceSqrFoot, 1e-9)
	assert.InDelta(t, 1000, *got[0].GrossRent, 1e-9)

	assert.Equal(t, 2011, got[1].Year)
	assert.InDelta(t, 200, *got[1].HousingUnits, 1e-9)
	assert.InDelta(t, 1000.0/3, *got[1].SalePriceSqrFoot, 1e-9)
}

func TestHousingUnitsPerYear_Mean(t *testing.T) {
	census := []model.CensusRecord{
		rec(2015, "A", 100, 1, 1),
		rec(2015, "B", 200, 1, 1),
		rec(2015, "C", 300, 1, 1),
	}
	got := HousingUnitsPerYear(census)
	require.Len(t, got, 1)
	assert.Equal(t, 2015, got[0].Year)
	assert.Equal(t, 200.0, *got[0].Value)
}

func TestPerYearSeries(t *testing.T) {
	census := sampleCensus()

	rent := GrossRentPerYear(census)
	require.Len(t, rent, 2)
	assert.Equal(t, []int{2010, 2011}, []int{rent[0].Year, rent[1].Year})
	assert.InDelta(t, 1000, *rent[0].Value, 1e-9)
	assert.InDelta(t, 1500, *rent[1].Value, 1e-9)

	price := SalePricePerYear(census)
	require.Len(t, price, 2)
	assert.InDelta(t, 250, *price[0].Value, 1e-9)
}

func TestMeansIgnoreAbsentValues(t *testing.T) {
	census := []model.CensusRecord{
		{Year: 2012, Neighborhood: "A", HousingUnits: model.Int64(10), SalePriceSqrFoot: model.Float64(4)},
		{Year: 2012, Neighborhood: "B", HousingUnits: model.Int64(20)},
		{Year: 2012, Neighborhood: "C"},
	}
	got := MeanByYear(census)
	require.Len(t, got, 1)
	assert.InDelta(t, 15, *got[0].HousingUnits, 1e-9)
	assert.InDelta(t, 4, *got[0].SalePriceSqrFoot, 1e-9)
	assert.Nil(t, got[0].GrossRent)

	hoods := MeanByNeighborhood(census)
	require.Len(t, hoods, 3)
	assert.Nil(t, hoods[2].HousingUnits)
	assert.Nil(t, hoods[2].SalePriceSqrFoot)
}

func TestMeanByNeighborhood_ByteOrder(t *testing.T) {
	census := []model.CensusRecord{
		rec(2010, "bayview", 1, 1, 1),
		rec(2010, "Western Addition", 1, 1, 1),
		rec(2010, "Alamo Square", 1, 1, 1),
	}
	assert.Equal(t, []string{"Alamo Square", "Western Addition", "bayview"}, Names(MeanByNeighborhood(census)))
}

func TestMeanByYearNeighborhood(t *testing.T) {
	census := []model.CensusRecord{
		rec(2011, "Bayview", 300, 30, 3),
		rec(2010, "Bayview", 100, 10, 1),
		rec(2010, "Bayview", 200, 20, 2),
	}
	got := MeanByYearNeighborhood(census)
	require.Len(t, got, 2)

	assert.Equal(t, 2010, got[0].Year)
	assert.Equal(t, "Bayview", got[0].Neighborhood)
	assert.InDelta(t, 150, *got[0].HousingUnits, 1e-9)
	assert.InDelta(t, 15, *got[0].SalePriceSqrFoot, 1e-9)

	assert.Equal(t, 2011, got[1].Year)
	assert.InDelta(t, 300, *got[1].HousingUnits, 1e-9)
}

func TestMeanByYearNeighborhood_Order(t *testing.T) {
	got := MeanByYearNeighborhood(sampleCensus())
	var keys []string
	for _, g := range got {
		keys = append(keys, fmt.Sprintf("%d/%s", g.Year, g.Neighborhood))
	}
	assert.Equal(t, []string{
		"2010/Alamo Square", "2010/Bayview",
		"2011/Alamo Square", "2011/Bayview", "2011/Cow Hollow",
	}, keys)
}

func TestTopNeighborhoods_Twelve(t *testing.T) {
	var census []model.CensusRecord
	for i := range 12 {
		census = append(census, rec(2010, fmt.Sprintf("N%02d", i), 1, float64(i*10), 1))
	}

	got := TopNeighborhoods(census, 10)
	require.Len(t, got, 10)
	assert.Equal(t, "N11", got[0].Neighborhood)
	assert.Equal(t, "N02", got[9].Neighborhood)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, *got[i-1].SalePriceSqrFoot, *got[i].SalePriceSqrFoot)
	}
}

func TestTopNeighborhoods_FewerThanN(t *testing.T) {
	var census []model.CensusRecord
	for i := range 5 {
		census = append(census, rec(2010, fmt.Sprintf("N%d", i), 1, float64(i), 1))
	}
	got := TopNeighborhoods(census, DefaultTopN)
	assert.Equal(t, []string{"N4", "N3", "N2", "N1", "N0"}, Names(got))
}

func TestTopN_TiesAndAbsent(t *testing.T) {
	means := []model.NeighborhoodMeans{
		{Neighborhood: "A"},
		{Neighborhood: "B", SalePriceSqrFoot: model.Float64(5)},
		{Neighborhood: "C", SalePriceSqrFoot: model.Float64(9)},
		{Neighborhood: "D", SalePriceSqrFoot: model.Float64(5)},
		{Neighborhood: "E"},
	}
	assert.Equal(t, []string{"C", "B", "D", "A", "E"}, Names(TopN(means, 10)))
	assert.Equal(t, []string{"C", "B"}, Names(TopN(means, 2)))
	assert.Empty(t, TopN(means, 0))
	assert.Empty(t, TopN(means, -1))

	// input untouched
	assert.Equal(t, "A", means[0].Neighborhood)
}

func TestJoinCoordinates(t *testing.T) {
	means := MeanByNeighborhood(sampleCensus())
	coords := []model.CoordinateRecord{
		{Neighborhood: "Bayview", Latitude: 37.73, Longitude: -122.39},
		{Neighborhood: "Alamo Square", Latitude: 37.79, Longitude: -122.40},
		{Neighborhood: "Presidio", Latitude: 37.79, Longitude: -122.46},
	}

	got := JoinCoordinates(means, coords)
	require.Len(t, got, 2, "Cow Hollow has no coordinates, Presidio has no census rows")
	assert.Equal(t, "Bayview", got[0].Neighborhood)
	assert.Equal(t, 37.73, got[0].Latitude)
	assert.InDelta(t, 150, *got[0].SalePriceSqrFoot, 1e-9)
	assert.Equal(t, "Alamo Square", got[1].Neighborhood)
	assert.InDelta(t, 400, *got[1].SalePriceSqrFoot, 1e-9)
}

func TestJoinCoordinates_CaseSensitiveNoMatch(t *testing.T) {
	means := MeanByNeighborhood(sampleCensus())
	coords := []model.CoordinateRecord{{Neighborhood: "bayview"}}

	got := JoinCoordinates(means, coords)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterNeighborhoods(t *testing.T) {
	census := sampleCensus()
	got := FilterNeighborhoods(census, []string{"Alamo Square", "Cow Hollow", "Nowhere"})
	require.Len(t, got, 3)
	assert.Equal(t, census[1], got[0])
	assert.Equal(t, census[3], got[1])
	assert.Equal(t, census[4], got[2])

	assert.Empty(t, FilterNeighborhoods(census, nil))
}

func TestCompute(t *testing.T) {
	census := sampleCensus()
	coords := []model.CoordinateRecord{
		{Neighborhood: "Alamo Square", Latitude: 37.79, Longitude: -122.40},
		{Neighborhood: "Cow Hollow", Latitude: 37.80, Longitude: -122.44},
	}

	s := Compute(census, coords, 2)
	assert.Equal(t, HousingUnitsPerYear(census), s.HousingUnitsPerYear)
	assert.Equal(t, GrossRentPerYear(census), s.GrossRentPerYear)
	assert.Equal(t, SalePricePerYear(census), s.SalePricePerYear)
	assert.Equal(t, MeanByYearNeighborhood(census), s.MeanByYearNeighborhood)
	assert.Equal(t, []string{"Alamo Square", "Cow Hollow"}, Names(s.TopNeighborhoods))
	assert.Len(t, s.Locations, 2)
	assert.Len(t, s.TopCensus, 3)

	assert.Len(t, Compute(census, coords, 0).TopNeighborhoods, 3)
}

func TestCompute_DeterministicAndPure(t *testing.T) {
	census := sampleCensus()
	before := sampleCensus()
	coords := []model.CoordinateRecord{{Neighborhood: "Bayview", Latitude: 1, Longitude: 2}}

	a := Compute(census, coords, DefaultTopN)
	b := Compute(census, coords, DefaultTopN)
	assert.Equal(t, a, b)
	assert.Equal(t, before, census)
}

func TestYRange(t *testing.T) {
	lo, hi, ok := YRange([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	// sample sd = sqrt(32/7)
	assert.InDelta(t, 2-1.0690449676496976, lo, 1e-9)
	assert.InDelta(t, 9+1.0690449676496976, hi, 1e-9)

	lo, hi, ok = YRange([]float64{3})
	assert.True(t, ok)
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 3.0, hi)

	_, _, ok = YRange(nil)
	assert.False(t, ok)
}

func TestPresent(t *testing.T) {
	vs := []model.YearValue{{Year: 1, Value: model.Float64(2)}, {Year: 2}, {Year: 3, Value: model.Float64(4)}}
	assert.Equal(t, []float64{2, 4}, Present(vs))
}
