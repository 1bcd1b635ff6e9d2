package pdf

import (
	"errors"
	"fmt"
)

// Upload validation errors
var (
	ErrNotPDF       = errors.New("only PDF files are allowed")
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyFile    = errors.New("file is empty")
)

// Default word merge tolerances in page units
const (
	DefaultXTolerance = 3.0
	DefaultYTolerance = 3.0
)

// WordOptions controls how characters are merged into words
type WordOptions struct {
	XTolerance float64 `json:"x_tolerance"`
	YTolerance float64 `json:"y_tolerance"`
}

// DefaultWordOptions returns the tolerances used for diagram labels
func DefaultWordOptions() WordOptions {
	return WordOptions{
		XTolerance: DefaultXTolerance,
		YTolerance: DefaultYTolerance,
	}
}

// Char is a single glyph with its box in top-left page coordinates
type Char struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// DocumentInfo summarizes a document's structure and info dictionary
type DocumentInfo struct {
	Pages    int    `json:"pages"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// ExtractError reports a failure inside the PDF library
type ExtractError struct {
	Op   string `json:"operation"`
	Page int    `json:"page"`
	Err  error  `json:"error"`
}

func (e *ExtractError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("pdf %s failed on page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf %s failed: %v", e.Op, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
