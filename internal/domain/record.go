package domain

import (
	"time"
)

// Category is the canonical accessory category id.
type Category string

const (
	CategorySafety      Category = "safety"
	CategoryEngine      Category = "engine"
	CategoryMaintenance Category = "maintenance"
	CategoryComfort     Category = "comfort"
	CategoryTech        Category = "tech"
)

// Demand is the normalized demand signal of a record.
type Demand string

const (
	DemandHigh   Demand = "High"
	DemandNormal Demand = "Normal"
)

// RawRow represents one CSV row keyed by header name, before normalization.
type RawRow struct {
	City     string `json:"City"`
	Region   string `json:"Region"`
	Category string `json:"Category"`
	Item     string `json:"Accessory Name"`
	Stock    string `json:"Stock"`
	Demand   string `json:"Demand"`
}

// StockRecord is the canonical per-city, per-item inventory entry.
type StockRecord struct {
	ID       int      `json:"id"`
	City     string   `json:"city"`
	Region   *string  `json:"region"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Category Category `json:"category"`
	Item     string   `json:"item"`
	Stock    int      `json:"stock"`
	Demand   Demand   `json:"demand"`
}

// RegionName returns the record's region or "" when it has none.
func (r StockRecord) RegionName() string {
	if r.Region == nil {
		return ""
	}
	return *r.Region
}

// CachedDataset is the last successfully normalized dataset and when it was fetched.
type CachedDataset struct {
	Records     []StockRecord `json:"records"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Notification records a simulated restock. It lives in memory only.
type Notification struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	Category  string    `json:"category"`
	Item      string    `json:"item"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// CloneRecords returns a deep copy of records, including region pointers.
func CloneRecords(records []StockRecord) []StockRecord {
	if records == nil {
		return nil
	}
	out := make([]StockRecord, len(records))
	for i, r := range records {
		if r.Region != nil {
			region := *r.Region
			r.Region = &region
		}
		out[i] = r
	}
	return out
}

// NewCachedDataset snapshots records with the current time.
func NewCachedDataset(records []StockRecord) CachedDataset {
	return CachedDataset{
		Records:     CloneRecords(records),
		LastUpdated: clock.Now().UTC(),
	}
}

// NewNotification builds an unread restock notification. The category is shown
// by its taxonomy label.
func NewNotification(id, city string, category Category, item string, at time.Time) Notification {
	return Notification{
		ID:        id,
		City:      city,
		Category:  CategoryLabel(category),
		Item:      item,
		Timestamp: at.UTC(),
	}
}
