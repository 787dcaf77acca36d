package domain

import "strings"

// All is the pass-through sentinel for every filter dimension.
const All = "All"

// Band is a stock-level classification.
type Band string

const (
	BandLow     Band = "Low Stock"
	BandOptimal Band = "Optimal"
	BandSurplus Band = "Surplus"
)

// Band thresholds.
const (
	LowStockThreshold = 30  // stock below this is Low Stock
	SurplusThreshold  = 150 // stock above this is Surplus
)

// BandOf classifies a stock level. Both thresholds are inclusive on the
// Optimal side: 30 and 150 are Optimal.
func BandOf(stock int) Band {
	switch {
	case stock < LowStockThreshold:
		return BandLow
	case stock > SurplusThreshold:
		return BandSurplus
	default:
		return BandOptimal
	}
}

// IsCritical reports whether a record is in the Low Stock band.
func (r StockRecord) IsCritical() bool {
	return BandOf(r.Stock) == BandLow
}

// FilterRegionSearch keeps records whose region equals region (or region is
// All/empty) and whose city contains search, case-insensitively.
func FilterRegionSearch(records []StockRecord, region, search string) []StockRecord {
	needle := strings.ToLower(search)
	out := make([]StockRecord, 0, len(records))
	for _, r := range records {
		if !isAll(region) && r.RegionName() != region {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.City), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// InventoryFilter narrows the inventory table. Empty fields and All pass everything.
type InventoryFilter struct {
	Category string
	Band     string
	Demand   string
}

// Matches reports whether a record satisfies every set dimension.
func (f InventoryFilter) Matches(r StockRecord) bool {
	if !isAll(f.Category) && string(r.Category) != f.Category {
		return false
	}
	if !isAll(f.Band) && string(BandOf(r.Stock)) != f.Band {
		return false
	}
	if !isAll(f.Demand) && string(r.Demand) != f.Demand {
		return false
	}
	return true
}

// Apply returns the records that match the filter, preserving order.
func (f InventoryFilter) Apply(records []StockRecord) []StockRecord {
	out := make([]StockRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Page is one page of the inventory table.
type Page struct {
	Items      []StockRecord `json:"items"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Paginate slices records into 1-based pages. Out-of-range pages are empty.
func Paginate(records []StockRecord, page, perPage int) Page {
	if perPage <= 0 {
		perPage = 10
	}
	if page <= 0 {
		page = 1
	}
	total := len(records)
	p := Page{
		Items:      []StockRecord{},
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	start := (page - 1) * perPage
	if start >= total {
		return p
	}
	end := min(start+perPage, total)
	p.Items = records[start:end]
	return p
}

// TransferCandidates lists records that can receive stock from source: same
// non-empty region, different city, same item.
func TransferCandidates(records []StockRecord, source StockRecord) []StockRecord {
	if source.Region == nil || *source.Region == "" {
		return []StockRecord{}
	}
	out := []StockRecord{}
	for _, r := range records {
		if r.RegionName() == *source.Region && r.City != source.City && r.Item == source.Item {
			out = append(out, r)
		}
	}
	return out
}
