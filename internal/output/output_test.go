package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/salesops/giftware-scraper/internal/models"
)

func sampleRecords() []models.ProductRecord {
	return []models.ProductRecord{
		{
			ItemNumber:   "12345",
			ProductName:  "Dragon Figurine C/12",
			UnitPrice:    "$24.50",
			CaseQuantity: "12",
			URL:          "https://shop.test/product/12345",
			Status:       models.StatusFound,
		},
		models.NotFoundRecord("99999"),
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	require.NoError(t, WriteRecords(path, sampleRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"12345", "Dragon Figurine C/12", "$24.50", "12", "https://shop.test/product/12345", "Found"}, rows[1])
	assert.Equal(t, []string{"99999", "Item not found", "N/A", "N/A", "Item not available", "Not Found"}, rows[2])
}

func TestWriteRecordsExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	require.NoError(t, WriteRecords(path, sampleRecords()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3)

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = cell.String()
	}
	assert.Equal(t, Columns, header)

	assert.Equal(t, "12345", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Found", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "Not Found", sheet.Rows[2].Cells[5].String())
}

func TestWriteRecordsEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	require.NoError(t, WriteRecords(path, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
