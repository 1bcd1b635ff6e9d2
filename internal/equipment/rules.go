package equipment

import (
	"errors"
	"regexp"
)

// Default tuning values. They were calibrated against one family of drawings
// and may need adjusting for others.
const (
	DefaultRowThreshold = 50.0
	DefaultWordsBefore  = 10
	DefaultWordsAfter   = 40
	DefaultTextWindow   = 300
)

// NamePattern matches an equipment name, optionally wrapped in single quotes
var NamePattern = regexp.MustCompile(`'?\b([A-Z]{3}[A-Z0-9]{2}[0-9]{3})\b'?`)

// DefaultIndicators are the substrings whose presence in the word window means
// it already carries ratings and the wider page-text window is not needed.
var DefaultIndicators = []string{"KVA", "KV", "A", "AMP"}

// Rules bundles the immutable parameters used by extraction. Build it once at
// startup and pass it to NewExtractor.
type Rules struct {
	Palette      Palette
	RowThreshold float64
	WordsBefore  int
	WordsAfter   int
	TextWindow   int
	Indicators   []string
}

// DefaultRules returns the rules matching the source drawings
func DefaultRules() Rules {
	return Rules{
		Palette:      DefaultPalette,
		RowThreshold: DefaultRowThreshold,
		WordsBefore:  DefaultWordsBefore,
		WordsAfter:   DefaultWordsAfter,
		TextWindow:   DefaultTextWindow,
		Indicators:   DefaultIndicators,
	}
}

// Validate checks that the rules can drive an extraction
func (r Rules) Validate() error {
	if r.Palette.Size() == 0 {
		return errors.New("palette cannot be empty")
	}
	if r.RowThreshold <= 0 {
		return errors.New("row threshold must be positive")
	}
	if r.WordsBefore < 0 || r.WordsAfter < 0 {
		return errors.New("word window sizes cannot be negative")
	}
	if r.TextWindow < 0 {
		return errors.New("text window cannot be negative")
	}
	return nil
}
