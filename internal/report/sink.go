// Package report renders extracted switchgear as a styled spreadsheet and a
// plain text summary.
package report

// Columns is the spreadsheet header, in order
var Columns = []string{"Equipment", "Type", "Properties", "Alternate From", "Primary From"}

// Fixed colors of the header row and the dark/light text choices
const (
	HeaderFill = "366092"
	TextWhite  = "FFFFFF"
	TextBlack  = "000000"
)

// RowStyle is the styling applied across a whole row. Colors are RRGGBB hex;
// an empty Fill leaves the cells unfilled.
type RowStyle struct {
	Fill      string
	FontColor string
	Bold      bool
}

// HeaderStyle is the style of the header row
var HeaderStyle = RowStyle{Fill: HeaderFill, FontColor: TextWhite, Bold: true}

// RowSink receives rendered rows. WriteHeader is called once before any
// WriteRow; Close flushes the output.
type RowSink interface {
	WriteHeader(columns []string) error
	WriteRow(values []string, style RowStyle) error
	Close() error
}
