package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
)

// TypeSummary holds the per-type breakdown
type TypeSummary struct {
	Type            equipment.Type `json:"type"`
	Label           string         `json:"label"`
	Count           int            `json:"count"`
	WithProperties  int            `json:"with_properties"`
	WithColors      int            `json:"with_colors"`
	WithConnections int            `json:"with_connections,omitempty"`
}

// ColorCount is the number of items rendered in one palette color
type ColorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes the outcome of a run
type Summary struct {
	Total      int           `json:"total"`
	WithColors int           `json:"with_colors"`
	Colors     []ColorCount  `json:"colors"`
	Types      []TypeSummary `json:"types"`
	Pages      int           `json:"pages,omitempty"`
	Title      string        `json:"title,omitempty"`
}

// Summarize computes the summary of items
func Summarize(items []*equipment.Item) *Summary {
	s := &Summary{Total: len(items)}

	colors := make(map[string]int)
	types := make(map[equipment.Type]*TypeSummary)

	for _, it := range items {
		ts, ok := types[it.Type]
		if !ok {
			ts = &TypeSummary{Type: it.Type, Label: it.Type.Label()}
			types[it.Type] = ts
		}
		ts.Count++

		if it.Properties != "" {
			ts.WithProperties++
		}
		if it.ColorHex != "" {
			s.WithColors++
			ts.WithColors++
			colors[it.ColorName]++
		}
		if it.Type == equipment.TypeDistribution && it.HasConnections() {
			ts.WithConnections++
		}
	}

	for name, n := range colors {
		s.Colors = append(s.Colors, ColorCount{Name: name, Count: n})
	}
	sort.Slice(s.Colors, func(i, j int) bool { return s.Colors[i].Name < s.Colors[j].Name })

	for _, ts := range types {
		s.Types = append(s.Types, *ts)
	}
	sort.Slice(s.Types, func(i, j int) bool { return s.Types[i].Type < s.Types[j].Type })

	return s
}

// Count returns the number of items of type t
func (s *Summary) Count(t equipment.Type) int {
	for _, ts := range s.Types {
		if ts.Type == t {
			return ts.Count
		}
	}
	return 0
}

// String renders the summary as a text report
func (s *Summary) String() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintf(&b, "%s\nEXTRACTION SUMMARY\n%s\n\n", rule, rule)
	if s.Pages > 0 {
		fmt.Fprintf(&b, "Pages: %d\n", s.Pages)
	}
	if s.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", s.Title)
	}
	fmt.Fprintf(&b, "Total records: %d\n", s.Total)
	fmt.Fprintf(&b, "Equipment with colors: %d/%d\n", s.WithColors, s.Total)

	b.WriteString("\nColor Distribution:\n")
	for _, c := range s.Colors {
		fmt.Fprintf(&b, "  %s: %d items\n", c.Name, c.Count)
	}

	b.WriteString("\nEquipment breakdown:\n")
	for _, ts := range s.Types {
		fmt.Fprintf(&b, "  %s (%s): %d items\n", ts.Type, ts.Label, ts.Count)
		fmt.Fprintf(&b, "    - With properties: %d\n", ts.WithProperties)
		if ts.Type == equipment.TypeDistribution {
			fmt.Fprintf(&b, "    - With connections: %d\n", ts.WithConnections)
		}
		fmt.Fprintf(&b, "    - With colors: %d\n", ts.WithColors)
	}

	return b.String()
}
