// Command validate checks a dataset CSV export against the reference tables
// before it is published: rows the service would drop, cities missing from
// the city table, category labels outside the taxonomy, and stock values that
// would read as zero. Unknown cities fail the run because they cannot be
// mapped or assigned a region.
//
// Usage:
//
//	go run ./cmd/validate -in inventory.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// phase collects findings for one check. Only fatal phases fail the run.
type phase struct {
	name     string
	fatal    bool
	findings []string
}

func (p *phase) addf(format string, args ...any) {
	p.findings = append(p.findings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return !p.fatal || len(p.findings) == 0 }

func main() {
	in := flag.String("in", "", "path to the dataset CSV export")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*in, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, w io.Writer) int {
	fmt.Fprintln(w, "=== Inventory Dataset Validation ===")
	fmt.Fprintln(w)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: open dataset: %v\n", err)
		return 1
	}
	rows, err := domain.ParseCSV(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(w, "FATAL: parse dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkDroppedRows(rows),
		checkCities(rows),
		checkCategories(rows),
		checkStock(rows),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		switch {
		case !p.passed():
			status = fmt.Sprintf("FAIL (%d)", len(p.findings))
			allPassed = false
		case len(p.findings) > 0:
			status = fmt.Sprintf("WARN (%d)", len(p.findings))
		}
		fmt.Fprintf(w, "  %-28s %s\n", p.name, status)
	}

	records := domain.NormalizeRows(rows)
	fmt.Fprintf(w, "\nRows: %d read, %d kept, %d dropped\n", len(rows), len(records), len(rows)-len(records))

	for _, p := range phases {
		if len(p.findings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, msg := range p.findings {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, msg)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nValidation passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// lineOf maps a data row index to its 1-based line in the file, header included.
func lineOf(i int) int { return i + 2 }

func checkDroppedRows(rows []domain.RawRow) *phase {
	p := &phase{name: "Dropped rows"}
	for i, row := range rows {
		if _, ok := domain.NormalizeRow(i, row); ok {
			continue
		}
		switch {
		case strings.TrimSpace(row.City) == "":
			p.addf("line %d: missing city", lineOf(i))
		default:
			p.addf("line %d: missing category", lineOf(i))
		}
	}
	return p
}

func checkCities(rows []domain.RawRow) *phase {
	p := &phase{name: "City reference", fatal: true}
	lines := map[string][]int{}
	for i, row := range rows {
		city := strings.TrimSpace(row.City)
		if city == "" {
			continue
		}
		if _, ok := domain.LookupCity(city); !ok {
			lines[city] = append(lines[city], lineOf(i))
		}
	}
	for _, city := range sortedKeys(lines) {
		p.addf("unknown city %q on lines %v", city, lines[city])
	}
	return p
}

func checkCategories(rows []domain.RawRow) *phase {
	p := &phase{name: "Category taxonomy"}
	lines := map[string][]int{}
	for i, row := range rows {
		label := strings.TrimSpace(row.Category)
		if label == "" {
			continue
		}
		if _, ok := domain.LookupCategory(label); !ok {
			lines[label] = append(lines[label], lineOf(i))
		}
	}
	for _, label := range sortedKeys(lines) {
		p.addf("unknown category %q on lines %v, read as %s", label, lines[label],
			domain.CategoryLabel(domain.CategoryMaintenance))
	}
	return p
}

func checkStock(rows []domain.RawRow) *phase {
	p := &phase{name: "Stock values"}
	for i, row := range rows {
		rec, ok := domain.NormalizeRow(i, row)
		if !ok || rec.Stock != 0 {
			continue
		}
		raw := strings.TrimSpace(row.Stock)
		if !strings.HasPrefix(raw, "0") {
			p.addf("line %d: stock %q read as 0", lineOf(i), raw)
		}
	}
	return p
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
