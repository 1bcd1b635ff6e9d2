package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
)

// groupWords merges characters into words. Characters are first grouped into
// lines whose tops lie within YTolerance of the line's first character, then
// each line is split wherever the horizontal gap exceeds XTolerance.
func groupWords(chars []Char, opts WordOptions) []equipment.Word {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]Char
	var line []Char
	lineTop := sorted[0].Top

	for _, c := range sorted {
		if math.Abs(c.Top-lineTop) > opts.YTolerance {
			lines = append(lines, line)
			line = []Char{c}
			lineTop = c.Top
			continue
		}
		line = append(line, c)
	}
	lines = append(lines, line)

	var words []equipment.Word
	for _, l := range lines {
		words = append(words, splitLine(l, opts.XTolerance)...)
	}
	return words
}

func splitLine(line []Char, xTolerance float64) []equipment.Word {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].X0 < line[j].X0
	})

	var words []equipment.Word
	var current []Char

	for i, c := range line {
		if i > 0 && c.X0-line[i-1].X1 > xTolerance {
			words = append(words, makeWord(current))
			current = nil
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		words = append(words, makeWord(current))
	}
	return words
}

func makeWord(chars []Char) equipment.Word {
	var b strings.Builder
	x0, top := chars[0].X0, chars[0].Top
	for _, c := range chars {
		b.WriteString(c.Text)
		x0 = min(x0, c.X0)
		top = min(top, c.Top)
	}
	return equipment.Word{Text: b.String(), X0: x0, Top: top}
}
