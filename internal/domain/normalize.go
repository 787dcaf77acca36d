package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV header names of the published sheet.
const (
	ColumnCity     = "City"
	ColumnRegion   = "Region"
	ColumnCategory = "Category"
	ColumnItem     = "Accessory Name"
	ColumnStock    = "Stock"
	ColumnDemand   = "Demand"
)

// ParseCSV reads a header-row CSV document into raw rows. Columns are matched
// by trimmed header name; unknown columns are ignored and missing ones read as "".
// Blank lines are skipped by the CSV reader and do not consume a row index.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := colIdx[h]; !dup {
			colIdx[h] = i
		}
	}

	field := func(rec []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []RawRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, RawRow{
			City:     field(rec, ColumnCity),
			Region:   field(rec, ColumnRegion),
			Category: field(rec, ColumnCategory),
			Item:     field(rec, ColumnItem),
			Stock:    field(rec, ColumnStock),
			Demand:   field(rec, ColumnDemand),
		})
	}
	return rows, nil
}

// NormalizeRows converts raw rows into canonical stock records in source order.
// Rows lacking a city or category are skipped; the remaining records keep their
// source row index as ID.
func NormalizeRows(rows []RawRow) []StockRecord {
	records := make([]StockRecord, 0, len(rows))
	for i, row := range rows {
		rec, ok := NormalizeRow(i, row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// NormalizeRow converts a single raw row. It returns false when the row has no
// city or no category.
func NormalizeRow(index int, row RawRow) (StockRecord, bool) {
	city := strings.TrimSpace(row.City)
	categoryLabel := strings.TrimSpace(row.Category)
	if city == "" || categoryLabel == "" {
		return StockRecord{}, false
	}

	rec := StockRecord{
		ID:       index,
		City:     city,
		Lat:      FallbackLat,
		Lng:      FallbackLng,
		Category: normalizeCategory(categoryLabel),
		Item:     row.Item,
		Stock:    parseStock(row.Stock),
		Demand:   normalizeDemand(row.Demand),
	}

	region := strings.TrimSpace(row.Region)
	ref, known := LookupCity(city)
	if known {
		rec.Lat = ref.Lat
		rec.Lng = ref.Lng
		if region == "" {
			region = ref.Region
		}
	}
	if region != "" {
		rec.Region = &region
	}

	return rec, true
}

// normalizeCategory resolves a category label to its id, defaulting to maintenance.
func normalizeCategory(label string) Category {
	if ref, ok := LookupCategory(label); ok {
		return ref.ID
	}
	return CategoryMaintenance
}

// normalizeDemand maps the exact string "High" to DemandHigh and everything else
// to DemandNormal. Matching is case-sensitive: "high" is Normal.
func normalizeDemand(value string) Demand {
	if value == string(DemandHigh) {
		return DemandHigh
	}
	return DemandNormal
}

// parseStock takes the leading integer of s, e.g. "15 units" -> 15, "12.7" -> 12.
// Non-numeric input yields 0 and negative values clamp to 0.
func parseStock(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || v < 0 {
		return 0
	}
	return v
}
