// Command normalize reads a dataset CSV export and writes the normalized stock
// records as JSON, using the same domain package the service runs. It is handy
// for producing fixtures and for eyeballing how a sheet will be interpreted.
//
// Usage:
//
//	go run ./cmd/normalize -in inventory.csv -out records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to the dataset CSV export")
	out := flag.String("out", "", "output path for the normalized JSON records")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	rows, err := readCSV(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}
	records := domain.NormalizeRows(rows)
	log.Printf("%s: %d rows, %d records, %d dropped", *in, len(rows), len(records), len(rows)-len(records))

	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	log.Printf("wrote records: %s", *out)

	printStats(records)
	return nil
}

func readCSV(path string) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return domain.ParseCSV(f)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644) //nolint:gosec // fixture output, not sensitive
}

func printStats(records []domain.StockRecord) {
	s := domain.Summarize(records)

	fmt.Printf("\nTotal stock: %d across %d records\n", s.TotalStock, s.RecordCount)
	fmt.Printf("Low stock: %d, high demand: %d\n", s.LowStockCount, s.HighDemandCount)

	fmt.Println("\nBy category:")
	for _, c := range s.ByCategory {
		fmt.Printf("  %-8s %d\n", c.Label, c.Value)
	}

	fmt.Println("\nBy region:")
	for _, r := range s.ByRegion {
		fmt.Printf("  %-18s %d\n", r.Name, r.Value)
	}

	if len(s.TopCritical) > 0 {
		fmt.Println("\nMost critical:")
		for _, r := range s.TopCritical {
			fmt.Printf("  %s / %s: %d\n", r.City, r.Item, r.Stock)
		}
	}
}
