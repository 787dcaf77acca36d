package domain

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
)

// TopCriticalLimit is how many critical items the dashboard lists inline.
const TopCriticalLimit = 5

// CategoryTotal is the stock sum for one taxonomy entry.
type CategoryTotal struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color"`
	Value int      `json:"value"`
}

// RegionTotal is the stock sum for one region.
type RegionTotal struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary holds the dashboard aggregates derived from a filtered record set.
type Summary struct {
	TotalStock      int             `json:"total_stock"`
	RecordCount     int             `json:"record_count"`
	LowStockCount   int             `json:"low_stock_count"`
	HighDemandCount int             `json:"high_demand_count"`
	ByCategory      []CategoryTotal `json:"by_category"`
	ByRegion        []RegionTotal   `json:"by_region"`
	Critical        []StockRecord   `json:"critical"`
	TopCritical     []StockRecord   `json:"top_critical"`
}

// Summarize computes every dashboard aggregate from scratch. It does not
// modify records.
func Summarize(records []StockRecord) Summary {
	s := Summary{
		RecordCount: len(records),
		ByCategory:  make([]CategoryTotal, 0, len(Categories)),
		ByRegion:    []RegionTotal{},
		Critical:    []StockRecord{},
	}

	byCategory := make(map[Category]int, len(Categories))
	byRegion := make(map[string]int)
	for _, r := range records {
		s.TotalStock += r.Stock
		byCategory[r.Category] += r.Stock
		if r.Demand == DemandHigh {
			s.HighDemandCount++
		}
		if r.Region != nil && *r.Region != "" {
			byRegion[*r.Region] += r.Stock
		}
		if r.IsCritical() {
			s.Critical = append(s.Critical, r)
		}
	}
	s.LowStockCount = len(s.Critical)

	for _, c := range Categories {
		s.ByCategory = append(s.ByCategory, CategoryTotal{ID: c.ID, Label: c.Label, Color: c.Color, Value: byCategory[c.ID]})
	}
	slices.SortStableFunc(s.ByCategory, func(a, b CategoryTotal) int {
		return cmp.Compare(b.Value, a.Value)
	})

	for name, v := range byRegion {
		s.ByRegion = append(s.ByRegion, RegionTotal{Name: name, Value: v})
	}
	slices.SortFunc(s.ByRegion, func(a, b RegionTotal) int {
		return cmp.Compare(a.Name, b.Name)
	})

	slices.SortStableFunc(s.Critical, func(a, b StockRecord) int {
		return cmp.Compare(a.Stock, b.Stock)
	})
	s.TopCritical = s.Critical[:min(TopCriticalLimit, len(s.Critical))]

	return s
}

// CategoryStat is a city's stock for one category.
type CategoryStat struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Stock int      `json:"stock"`
}

// CityMarker is one map pin.
type CityMarker struct {
	Name          string         `json:"name"`
	Lat           float64        `json:"lat"`
	Lng           float64        `json:"lng"`
	TotalStock    int            `json:"total_stock"`
	IsCritical    bool           `json:"is_critical"`
	LowStockItems []StockRecord  `json:"low_stock_items"`
	CategoryStats []CategoryStat `json:"category_stats"`
	Geocoded      bool           `json:"geocoded,omitempty"`
}

// markerOffset is the radius, in degrees, used to fan out pins sharing a location.
const markerOffset = 0.15

// PlaceFunc resolves coordinates for a city missing from the reference table.
// It returns false when the city cannot be placed.
type PlaceFunc func(ctx context.Context, city string) (lat, lng float64, ok bool)

// CityMarkers aggregates records per unique city, in first-seen order. Cities
// missing from the reference table are skipped unless place resolves them.
// Pins that round to the same 2-decimal coordinate are spread on a small circle.
func CityMarkers(ctx context.Context, records []StockRecord, place PlaceFunc) []CityMarker {
	var order []string
	byCity := make(map[string][]StockRecord)
	for _, r := range records {
		if _, ok := byCity[r.City]; !ok {
			order = append(order, r.City)
		}
		byCity[r.City] = append(byCity[r.City], r)
	}

	markers := make([]CityMarker, 0, len(order))
	for _, name := range order {
		m := CityMarker{Name: name, LowStockItems: []StockRecord{}, CategoryStats: []CategoryStat{}}
		if ref, ok := LookupCity(name); ok {
			m.Lat, m.Lng = ref.Lat, ref.Lng
		} else if place != nil {
			lat, lng, ok := place(ctx, name)
			if !ok {
				continue
			}
			m.Lat, m.Lng, m.Geocoded = lat, lng, true
		} else {
			continue
		}

		perCategory := make(map[Category]int)
		for _, r := range byCity[name] {
			m.TotalStock += r.Stock
			perCategory[r.Category] += r.Stock
			if r.IsCritical() {
				m.LowStockItems = append(m.LowStockItems, r)
			}
		}
		m.IsCritical = len(m.LowStockItems) > 0
		for _, c := range Categories {
			if v := perCategory[c.ID]; v > 0 {
				m.CategoryStats = append(m.CategoryStats, CategoryStat{ID: c.ID, Label: c.Label, Stock: v})
			}
		}
		markers = append(markers, m)
	}

	spreadOverlapping(markers)
	return markers
}

// spreadOverlapping offsets markers that share a rounded coordinate so each pin
// stays clickable.
func spreadOverlapping(markers []CityMarker) {
	groups := make(map[string][]int)
	for i, m := range markers {
		key := fmt.Sprintf("%.2f,%.2f", m.Lat, m.Lng)
		groups[key] = append(groups[key], i)
	}
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		for pos, i := range idx {
			angle := float64(pos) / float64(len(idx)) * 2 * math.Pi
			markers[i].Lat += math.Cos(angle) * markerOffset
			markers[i].Lng += math.Sin(angle) * markerOffset
		}
	}
}
