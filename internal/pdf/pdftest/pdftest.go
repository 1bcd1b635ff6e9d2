// Package pdftest builds small synthetic PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Line is a string drawn at a baseline position on a page
type Line struct {
	X, Y float64
	S    string
}

// Build writes a minimal PDF with one page per entry of pages. Text is set in
// a 12pt monospaced font 600 units wide so glyph boxes are predictable: each
// character is 7.2pt wide and a line drawn at baseline Y has top 792-(Y+9.6).
func Build(pages ...[]Line) []byte {
	var objects []string

	pageCount := len(pages)
	fontObj := 3 + 2*pageCount

	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
			strings.Join(kids, " "), pageCount),
	)

	for i, lines := range pages {
		var content strings.Builder
		content.WriteString("BT /F1 12 Tf\n")
		for _, l := range lines {
			fmt.Fprintf(&content, "1 0 0 1 %.2f %.2f Tm (%s) Tj\n", l.X, l.Y, l.S)
		}
		content.WriteString("ET")

		stream := content.String()
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
				fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	objects = append(objects, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// Row places labels on one baseline, left to right, spaced apart by dx
func Row(x, y, dx float64, labels ...string) []Line {
	lines := make([]Line, 0, len(labels))
	for i, l := range labels {
		lines = append(lines, Line{X: x + float64(i)*dx, Y: y, S: l})
	}
	return lines
}
