// Package domain models per-city motorcycle-accessory stock levels.
//
// # Data Source
//
// Stock levels come from a published spreadsheet exported as CSV. The sheet is
// maintained by hand, so every column is loosely typed text:
//
//	City, Region, Category, Accessory Name, Stock, Demand
//	Mumbai, West India, Safety, Rain Suit, 15, High
//
// Rows are converted into [StockRecord] values by [NormalizeRows].
//
// # Normalization Rules
//
// City and Category are required. Rows where either is blank after trimming are
// dropped; this is a filtering rule, not an error.
//
// Category is matched case-insensitively against the taxonomy labels in
// [Categories] (the id is accepted too). Anything else becomes "maintenance".
//
// City is matched exactly (after trimming) against [Cities]. A match supplies
// coordinates and, when the row leaves Region blank, the region. A miss places
// the record at the national centroid ([FallbackLat], [FallbackLng]) and keeps
// whatever region the row gave, possibly none.
//
// Stock is parsed leniently: a leading integer is taken ("15 units" -> 15),
// anything non-numeric becomes 0, and negative values clamp to 0.
//
// Demand is "High" only for the exact string "High"; everything else is "Normal".
//
// # Stock Bands
//
//	Low Stock: stock < 30
//	Optimal:   30 <= stock <= 150
//	Surplus:   stock > 150
//
// The band thresholds drive the critical-items list, the map's critical
// markers, and the inventory table's status filter. See [BandOf].
//
// # Record IDs
//
// A record's ID is its 0-based row index in the source sheet, counting dropped
// rows, so IDs stay aligned with the sheet between refreshes of an unchanged
// sheet. IDs are not stable across edits that insert or delete rows.
package domain
