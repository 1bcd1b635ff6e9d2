package pdf

import (
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/ledongthuc/pdf"
)

// US Letter, used when a page has no resolvable MediaBox
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// fraction of the font size between the baseline and the glyph top
	ascentRatio = 0.8

	maxInheritDepth = 32
)

// Document provides page text and positioned words from a PDF.
// It implements equipment.PageSource.
type Document struct {
	reader *pdf.Reader
	file   *os.File
	opts   WordOptions
}

var _ equipment.PageSource = (*Document)(nil)

// Open opens the PDF at path
func Open(path string, opts WordOptions) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &ExtractError{Op: "open", Page: -1, Err: err}
	}
	return &Document{reader: r, file: f, opts: opts}, nil
}

// NewDocument reads a PDF held in memory or any other random access source
func NewDocument(r io.ReaderAt, size int64, opts WordOptions) (doc *Document, err error) {
	// a damaged xref table can panic inside the reader
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = &ExtractError{Op: "open", Page: -1, Err: fmt.Errorf("%v", rec)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, &ExtractError{Op: "open", Page: -1, Err: err}
	}
	return &Document{reader: reader, opts: opts}, nil
}

// Close releases the underlying file, if any
func (d *Document) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of a zero based page
func (d *Document) PageText(page int) (text string, err error) {
	p, err := d.page(page)
	if err != nil {
		return "", err
	}
	if p.V.IsNull() {
		return "", nil
	}

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", &ExtractError{Op: "text", Page: page, Err: err}
	}
	return text, nil
}

// PageWords returns the words of a zero based page in reading order
func (d *Document) PageWords(page int) (words []equipment.Word, err error) {
	p, err := d.page(page)
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, nil
	}

	// the content decoder panics on malformed streams
	defer func() {
		if r := recover(); r != nil {
			words = nil
			err = &ExtractError{Op: "words", Page: page, Err: fmt.Errorf("%v", r)}
		}
	}()

	_, height := pageSize(p)
	chars := glyphChars(p.Content().Text, height)
	return groupWords(chars, d.opts), nil
}

func (d *Document) page(page int) (pdf.Page, error) {
	if page < 0 || page >= d.reader.NumPage() {
		return pdf.Page{}, &ExtractError{
			Op:   "page",
			Page: page,
			Err:  fmt.Errorf("invalid page index (document has %d pages)", d.reader.NumPage()),
		}
	}
	return d.reader.Page(page + 1), nil
}

// glyphChars converts text runs to per-character boxes with the origin moved
// to the top-left corner of the page. Whitespace is dropped; it only
// separates words.
func glyphChars(runs []pdf.Text, pageHeight float64) []Char {
	var chars []Char
	for _, t := range runs {
		runes := []rune(t.S)
		if len(runes) == 0 {
			continue
		}

		top := pageHeight - (t.Y + t.FontSize*ascentRatio)
		width := t.W / float64(len(runes))
		x := t.X

		for _, r := range runes {
			if !unicode.IsSpace(r) {
				chars = append(chars, Char{
					Text:   string(r),
					X0:     x,
					X1:     x + width,
					Top:    top,
					Bottom: top + t.FontSize,
				})
			}
			x += width
		}
	}
	return chars
}

// pageSize reads the MediaBox, following Parent links for inherited values
func pageSize(p pdf.Page) (float64, float64) {
	v := p.V
	for i := 0; i < maxInheritDepth && !v.IsNull(); i++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			width := box.Index(2).Float64() - box.Index(0).Float64()
			height := box.Index(3).Float64() - box.Index(1).Float64()
			if width > 0 && height > 0 {
				return width, height
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}
