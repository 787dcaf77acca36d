package pipeline

import (
	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// normalize converts raw rows into stock records and reports how many rows
// were dropped for missing a city or category.
func normalize(rows []domain.RawRow) ([]domain.StockRecord, int) {
	records := domain.NormalizeRows(rows)
	return records, len(rows) - len(records)
}
