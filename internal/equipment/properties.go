package equipment

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	kvaPattern       = regexp.MustCompile(`(?i)\b(\d+)\s*KVA\b`)
	ampPattern       = regexp.MustCompile(`(?i)\b(\d{3,5})\s*(?:A\b|AMP)`)
	primaryPattern   = regexp.MustCompile(`(?i)(?:PRIMARY[:\s]+)?(\d+\.?\d*)\s*kV\b`)
	secondaryPattern = regexp.MustCompile(`(?i)(?:SECONDARY[:\s]+)?(\d+Y/\d+V)`)
	voltagePattern   = regexp.MustCompile(`\b(480|208|240|600)\s*V\b`)
)

// ParseProperties summarizes the ratings found in text: the largest kVA and
// amperage values, the first primary voltage, and the secondary voltage
// (or a plain utilization voltage when no wye rating is present).
func ParseProperties(text string) string {
	var props []string

	if kva, ok := maxCapture(kvaPattern, text); ok {
		props = append(props, strconv.Itoa(kva)+"KVA")
	}
	if amps, ok := maxCapture(ampPattern, text); ok {
		props = append(props, strconv.Itoa(amps)+"A")
	}
	if m := primaryPattern.FindStringSubmatch(text); m != nil {
		props = append(props, m[1]+"kV")
	}

	hasWye := false
	if m := secondaryPattern.FindStringSubmatch(text); m != nil {
		props = append(props, m[1])
		hasWye = strings.Contains(m[1], "Y/")
	}
	if !hasWye {
		if m := voltagePattern.FindStringSubmatch(text); m != nil {
			props = append(props, m[1]+"V")
		}
	}

	return strings.Join(props, ", ")
}

func maxCapture(re *regexp.Regexp, text string) (int, bool) {
	best, found := 0, false
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

// propertyWindow picks the text the properties are parsed from: the word
// window around the match, or a character window around the first occurrence
// of name in the page text when the word window has no unit indicators.
func (r Rules) propertyWindow(name, wordWindow, pageText string) string {
	upper := strings.ToUpper(wordWindow)
	for _, ind := range r.Indicators {
		if strings.Contains(upper, ind) {
			return wordWindow
		}
	}

	idx := strings.Index(pageText, name)
	if idx < 0 {
		return wordWindow
	}
	start := max(0, idx-r.TextWindow)
	end := min(len(pageText), idx+len(name)+r.TextWindow)
	return pageText[start:end]
}

// wordWindow joins the words from before words ahead of i to after words
// past it (exclusive), clamped to the slice.
func wordWindow(words []Word, i, before, after int) string {
	start := max(0, i-before)
	end := min(len(words), i+after)
	parts := make([]string, 0, end-start)
	for _, w := range words[start:end] {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
