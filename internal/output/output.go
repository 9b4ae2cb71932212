package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/salesops/giftware-scraper/internal/models"
)

// Columns is the report column order.
var Columns = []string{"Item Number", "Product Name", "Unit Price", "Case Quantity", "URL", "Status"}

// WriteRecords writes the batch report, dispatching on extension. Records are
// written in the order given; one row per record.
func WriteRecords(path string, records []models.ProductRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeExcel(path, records)
	default:
		return writeCSV(path, records)
	}
}

func writeCSV(path string, records []models.ProductRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{r.ItemNumber, r.ProductName, r.UnitPrice, r.CaseQuantity, r.URL, string(r.Status)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ItemNumber, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeExcel(path string, records []models.ProductRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		for _, v := range []string{r.ItemNumber, r.ProductName, r.UnitPrice, r.CaseQuantity, r.URL, string(r.Status)} {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
