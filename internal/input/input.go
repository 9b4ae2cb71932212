package input

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx/v2"
)

// Column headers accepted as the item number column, compared after
// lowercasing and stripping non-alphanumerics.
var headerAliases = map[string]bool{
	"itemnumber":  true,
	"itemno":      true,
	"item":        true,
	"itemnum":     true,
	"sku":         true,
	"productcode": true,
	"productid":   true,
	"number":      true,
}

// ReadItemNumbers loads the item number list from a spreadsheet or text file,
// dispatching on extension. Duplicates are kept; every input row yields one
// batch entry.
func ReadItemNumbers(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return readExcel(path)
	case ".csv":
		return readCSV(path)
	case ".txt", "":
		return readLines(path)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

func readExcel(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}

	return itemsFromRows(rows, path)
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	return itemsFromRows(rows, path)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var items []string
	for _, line := range strings.Split(string(data), "\n") {
		if item := strings.TrimSpace(line); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no item numbers in %s", path)
	}
	return items, nil
}

// itemsFromRows picks the item number column by header alias, falling back to
// the first column when no header matches.
func itemsFromRows(rows [][]string, path string) ([]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no item numbers in %s", path)
	}

	col := 0
	start := 0
	if idx, ok := findItemColumn(rows[0]); ok {
		col = idx
		start = 1
	}

	var items []string
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		if item := strings.TrimSpace(row[col]); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no item numbers in %s", path)
	}
	return items, nil
}

func findItemColumn(header []string) (int, bool) {
	for i, cell := range header {
		if headerAliases[normalizeHeader(cell)] {
			return i, true
		}
	}
	return 0, false
}

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
