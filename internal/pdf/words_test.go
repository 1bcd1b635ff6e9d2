package pdf

import (
	"bytes"
	"testing"

	"github.com/a3tai/switchgear-extractor/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chars(s string, x, top, width float64) []Char {
	var out []Char
	for _, r := range s {
		if r != ' ' {
			out = append(out, Char{Text: string(r), X0: x, X1: x + width, Top: top, Bottom: top + 12})
		}
		x += width
	}
	return out
}

func TestGroupWords(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, groupWords(nil, DefaultWordOptions()))
	})

	t.Run("splits on gaps and lines", func(t *testing.T) {
		var in []Char
		in = append(in, chars("'DSGAA102' 1500KVA", 72, 60, 7.2)...)
		in = append(in, chars("480V", 72, 80, 7.2)...)

		words := groupWords(in, DefaultWordOptions())
		require.Len(t, words, 3)
		assert.Equal(t, "'DSGAA102'", words[0].Text)
		assert.InDelta(t, 72.0, words[0].X0, 0.001)
		assert.InDelta(t, 60.0, words[0].Top, 0.001)
		assert.Equal(t, "1500KVA", words[1].Text)
		assert.InDelta(t, 72.0+11*7.2, words[1].X0, 0.001)
		assert.Equal(t, "480V", words[2].Text)
	})

	t.Run("small vertical jitter stays on one line", func(t *testing.T) {
		in := append(chars("MVS", 10, 50, 6), chars("AA100", 28, 51.5, 6)...)
		words := groupWords(in, DefaultWordOptions())
		require.Len(t, words, 1)
		assert.Equal(t, "MVSAA100", words[0].Text)
		assert.InDelta(t, 50.0, words[0].Top, 0.001)
	})

	t.Run("unsorted input", func(t *testing.T) {
		in := chars("DSG", 40, 10, 5)
		in = append(chars("AB", 10, 10, 5), in...)
		words := groupWords(in, DefaultWordOptions())
		require.Len(t, words, 2)
		assert.Equal(t, "AB", words[0].Text)
		assert.Equal(t, "DSG", words[1].Text)
	})
}

func TestDocument_Synthetic(t *testing.T) {
	data := pdftest.Build(
		[]pdftest.Line{
			{X: 72, Y: 720, S: "'MVSAA100' 13.8kV"},
			{X: 300, Y: 720, S: "'MVSAA101'"},
		},
		[]pdftest.Line{
			{X: 72, Y: 600, S: "'DSGAA102'"},
		},
	)

	doc, err := NewDocument(bytes.NewReader(data), int64(len(data)), DefaultWordOptions())
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.NumPages())

	words, err := doc.PageWords(0)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, "'MVSAA100'", words[0].Text)
	assert.InDelta(t, 72.0, words[0].X0, 0.01)
	assert.InDelta(t, 792-(720+12*ascentRatio), words[0].Top, 0.01)
	assert.Equal(t, "13.8kV", words[1].Text)
	assert.Equal(t, "'MVSAA101'", words[2].Text)
	assert.InDelta(t, 300.0, words[2].X0, 0.01)

	text, err := doc.PageText(1)
	require.NoError(t, err)
	assert.Contains(t, text, "DSGAA102")

	_, err = doc.PageWords(2)
	var extractErr *ExtractError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "page", extractErr.Op)
}

func TestInspect_Synthetic(t *testing.T) {
	data := pdftest.Build([]pdftest.Line{{X: 72, Y: 720, S: "'DSGAA102'"}})

	info, err := Inspect(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect(bytes.NewReader([]byte("not a pdf at all")))
	assert.Error(t, err)
}
