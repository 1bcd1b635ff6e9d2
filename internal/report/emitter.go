package report

import (
	"fmt"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"go.uber.org/zap"
)

// brightness below which white text is used
const contrastThreshold = 128

// Emitter converts items into styled rows
type Emitter struct {
	logger *zap.Logger
}

// NewEmitter creates an emitter
func NewEmitter(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{logger: logger}
}

// Emit writes the header and one row per item, in the order given, to sink.
// The sink is not closed.
func (e *Emitter) Emit(items []*equipment.Item, sink RowSink) error {
	if err := sink.WriteHeader(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, it := range items {
		if err := sink.WriteRow(Values(it), e.rowStyle(it)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", it.Name, err)
		}
	}
	return nil
}

// rowStyle fills the row with the item's palette color. A color that does not
// parse is logged and rendered as an unfilled row with black text.
func (e *Emitter) rowStyle(it *equipment.Item) RowStyle {
	if it.ColorHex == "" {
		return RowStyle{FontColor: TextBlack}
	}

	font, err := ContrastText(it.ColorHex)
	if err != nil {
		e.logger.Warn("invalid color hex",
			zap.String("equipment", it.Name),
			zap.String("color", it.ColorHex),
			zap.Error(err))
		return RowStyle{FontColor: TextBlack}
	}
	return RowStyle{Fill: it.ColorHex, FontColor: font}
}

// ContrastText picks white text for dark fills and black text otherwise
func ContrastText(fillHex string) (string, error) {
	c, err := equipment.ParseHex(fillHex)
	if err != nil {
		return TextBlack, err
	}
	if equipment.Brightness(c) < contrastThreshold {
		return TextWhite, nil
	}
	return TextBlack, nil
}

// Values returns the cell values of an item in column order
func Values(it *equipment.Item) []string {
	return []string{
		it.Name,
		string(it.Type),
		it.Properties,
		it.AlternateSource,
		it.PrimarySource,
	}
}
