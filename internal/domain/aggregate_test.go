package domain

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	records := sampleRecords()
	s := Summarize(records)

	assert.Equal(t, 15+180+30+150+29+60, s.TotalStock)
	assert.Equal(t, 6, s.RecordCount)
	assert.Equal(t, 2, s.LowStockCount)
	assert.Equal(t, 2, s.HighDemandCount)

	require.Len(t, s.ByCategory, len(Categories))
	assert.Equal(t, CategorySafety, s.ByCategory[0].ID)
	assert.Equal(t, 255, s.ByCategory[0].Value)
	assert.Equal(t, "Safety", s.ByCategory[0].Label)
	for i := 1; i < len(s.ByCategory); i++ {
		assert.GreaterOrEqual(t, s.ByCategory[i-1].Value, s.ByCategory[i].Value)
	}
	assert.Equal(t, CategoryMaintenance, s.ByCategory[len(s.ByCategory)-1].ID, "zero-value categories still appear")

	assert.Equal(t, []RegionTotal{
		{Name: RegionSouth, Value: 150},
		{Name: RegionWest, Value: 285},
	}, s.ByRegion, "records without region are excluded")

	assert.Equal(t, []int{0, 4}, recordIDs(s.Critical))
	assert.Equal(t, []int{0, 4}, recordIDs(s.TopCritical))
}

func TestSummarize_TopCriticalCapped(t *testing.T) {
	records := make([]StockRecord, 8)
	for i := range records {
		records[i] = StockRecord{ID: i, City: "Pune", Category: CategoryEngine, Stock: 20 - i}
	}

	s := Summarize(records)
	assert.Len(t, s.Critical, 8)
	assert.Equal(t, []int{7, 6, 5, 4, 3}, recordIDs(s.TopCritical))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalStock)
	assert.NotNil(t, s.ByRegion)
	assert.NotNil(t, s.Critical)
	assert.Len(t, s.ByCategory, len(Categories))
}

func TestSummarize_Idempotent(t *testing.T) {
	records := sampleRecords()
	before := CloneRecords(records)

	first := Summarize(records)
	second := Summarize(records)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("summaries differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, records); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestCityMarkers(t *testing.T) {
	records := sampleRecords()

	markers := CityMarkers(context.Background(), records, nil)

	names := make([]string, 0, len(markers))
	for _, m := range markers {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Mumbai", "Pune", "Nagpur", "Chennai"}, names, "unknown cities are skipped")

	mumbai := markers[0]
	assert.Equal(t, 15, mumbai.TotalStock)
	assert.True(t, mumbai.IsCritical)
	assert.Len(t, mumbai.LowStockItems, 1)
	assert.Equal(t, []CategoryStat{{ID: CategorySafety, Label: "Safety", Stock: 15}}, mumbai.CategoryStats)
	assert.Equal(t, 19.0760, mumbai.Lat)
	assert.False(t, mumbai.Geocoded)

	assert.False(t, markers[1].IsCritical)
}

func TestCityMarkers_PlaceFunc(t *testing.T) {
	records := sampleRecords()
	var asked []string
	place := func(_ context.Context, city string) (float64, float64, bool) {
		asked = append(asked, city)
		if city == "Atlantis" {
			return 10.5, 80.25, true
		}
		return 0, 0, false
	}

	markers := CityMarkers(context.Background(), records, place)

	assert.Equal(t, []string{"Atlantis", "Navi Mumbai"}, asked, "only unknown cities are resolved")
	require.Len(t, markers, 5)
	atlantis := markers[4]
	assert.Equal(t, "Atlantis", atlantis.Name)
	assert.True(t, atlantis.Geocoded)
	assert.Equal(t, 10.5, atlantis.Lat)
	assert.Equal(t, 29, atlantis.TotalStock)
}

func TestCityMarkers_SpreadsOverlappingPins(t *testing.T) {
	records := []StockRecord{
		{City: "Bangalore", Category: CategoryTech, Stock: 40},
		{City: "Bengaluru", Category: CategoryTech, Stock: 50},
		{City: "Chennai", Category: CategoryTech, Stock: 60},
	}

	markers := CityMarkers(context.Background(), records, nil)
	require.Len(t, markers, 3)

	ref, _ := LookupCity("Bangalore")
	for _, m := range markers[:2] {
		dist := math.Hypot(m.Lat-ref.Lat, m.Lng-ref.Lng)
		assert.InDelta(t, markerOffset, dist, 1e-9, "%s should sit on the offset circle", m.Name)
	}
	assert.NotEqual(t, markers[0].Lat, markers[1].Lat)

	chennai, _ := LookupCity("Chennai")
	assert.Equal(t, chennai.Lat, markers[2].Lat)
	assert.Equal(t, chennai.Lng, markers[2].Lng)
}
