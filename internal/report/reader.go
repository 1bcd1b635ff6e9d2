package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Record is one data row read back from a generated spreadsheet
type Record struct {
	Equipment     string `json:"equipment"`
	Type          string `json:"type"`
	Properties    string `json:"properties"`
	AlternateFrom string `json:"alternate_from"`
	PrimaryFrom   string `json:"primary_from"`
}

// ReadSheet reads the data rows of a spreadsheet written by XLSXSink
func ReadSheet(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

// ReadSheetFrom is ReadSheet for an in-memory workbook
func ReadSheetFrom(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(f *excelize.File) ([]Record, error) {
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", SheetName)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// trailing empty cells are not returned
		cells := make([]string, len(Columns))
		copy(cells, row)
		records = append(records, Record{
			Equipment:     cells[0],
			Type:          cells[1],
			Properties:    cells[2],
			AlternateFrom: cells[3],
			PrimaryFrom:   cells[4],
		})
	}
	return records, nil
}
