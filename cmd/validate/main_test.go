package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

func TestRun_CleanDatasetPasses(t *testing.T) {
	var out bytes.Buffer
	code := run("testdata/clean.csv", &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Rows: 4 read, 4 kept, 0 dropped")
	assert.Contains(t, out.String(), "Validation passed.")
}

func TestRun_UnknownCityFails(t *testing.T) {
	var out bytes.Buffer
	code := run("testdata/issues.csv", &out)

	assert.Equal(t, 1, code)
	report := out.String()
	assert.Contains(t, report, "Rows: 6 read, 4 kept, 2 dropped")
	assert.Contains(t, report, `unknown city "Leh" on lines [6 7]`)
	assert.Contains(t, report, `unknown category "Brakes" on lines [6], read as Maint.`)
	assert.Contains(t, report, "line 3: missing city")
	assert.Contains(t, report, "line 4: missing category")
	assert.Contains(t, report, `line 5: stock "n/a" read as 0`)
	assert.Contains(t, report, "Validation FAILED.")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run("testdata/missing.csv", &out))
	assert.Contains(t, out.String(), "FATAL: open dataset")
}

func TestPhases(t *testing.T) {
	rows := []domain.RawRow{
		{City: "Mumbai", Category: "Safety", Stock: "0"},
		{City: "Atlantis", Category: "Tech", Stock: "three"},
	}

	cities := checkCities(rows)
	assert.False(t, cities.passed())
	require.Len(t, cities.findings, 1)

	stock := checkStock(rows)
	assert.True(t, stock.passed(), "stock findings are warnings")
	require.Len(t, stock.findings, 1)
	assert.Contains(t, stock.findings[0], "line 3")

	assert.Empty(t, checkDroppedRows(rows).findings)
	assert.Empty(t, checkCategories(rows).findings)
}
