package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet
const SheetName = "Equipment Data"

var columnWidths = map[string]float64{
	"A": 20,
	"B": 15,
	"C": 50,
	"D": 20,
	"E": 20,
}

// XLSXSink writes rows to an .xlsx workbook saved on Close
type XLSXSink struct {
	file   *excelize.File
	path   string
	row    int
	styles map[RowStyle]int
}

var _ RowSink = (*XLSXSink)(nil)

// NewXLSXSink creates a workbook that will be saved to path
func NewXLSXSink(path string) (*XLSXSink, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	return &XLSXSink{
		file:   f,
		path:   path,
		styles: make(map[RowStyle]int),
	}, nil
}

// WriteHeader writes the header row
func (s *XLSXSink) WriteHeader(columns []string) error {
	style, err := s.style(HeaderStyle, "center")
	if err != nil {
		return err
	}
	return s.writeRow(columns, style)
}

// WriteRow appends a data row
func (s *XLSXSink) WriteRow(values []string, rs RowStyle) error {
	style, err := s.style(rs, "left")
	if err != nil {
		return err
	}
	return s.writeRow(values, style)
}

// Close saves the workbook and releases it
func (s *XLSXSink) Close() error {
	defer s.file.Close()
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

func (s *XLSXSink) writeRow(values []string, style int) error {
	s.row++
	if len(values) == 0 {
		return nil
	}

	first, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), s.row)
	if err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := s.file.SetSheetRow(SheetName, first, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", s.row, err)
	}
	return s.file.SetCellStyle(SheetName, first, last, style)
}

// style returns the id of the style for rs, creating it on first use
func (s *XLSXSink) style(rs RowStyle, horizontal string) (int, error) {
	if id, ok := s.styles[rs]; ok {
		return id, nil
	}

	st := &excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: TextBlack, Style: 1},
			{Type: "right", Color: TextBlack, Style: 1},
			{Type: "top", Color: TextBlack, Style: 1},
			{Type: "bottom", Color: TextBlack, Style: 1},
		},
		Font: &excelize.Font{Bold: rs.Bold, Color: rs.FontColor},
		Alignment: &excelize.Alignment{
			Horizontal: horizontal,
			Vertical:   "center",
			WrapText:   horizontal == "left",
		},
	}
	if rs.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rs.Fill}}
	}

	id, err := s.file.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	s.styles[rs] = id
	return id, nil
}
