// Package equipment turns positioned words from a single-line diagram into
// switchgear records: it recognizes equipment names, groups them into rows,
// assigns each a palette color from its position and infers which service
// switchgear feeds each distribution switchgear.
package equipment

import (
	"errors"
	"sort"
)

// ErrNoEquipment is returned when a run yields no recognized equipment,
// whether because the document has none or because extraction failed.
var ErrNoEquipment = errors.New("no equipment found in PDF")

// Type identifies an equipment category by its three letter name prefix
type Type string

const (
	TypeService      Type = "MVS"
	TypeDistribution Type = "DSG"
)

// Label returns the human readable category name
func (t Type) Label() string {
	switch t {
	case TypeService:
		return "Service Switchgear"
	case TypeDistribution:
		return "Distribution Switchgear"
	default:
		return "Unknown"
	}
}

// TypeOf derives the type from the first three characters of an equipment
// name. The second return value is false for unrecognized prefixes.
func TypeOf(name string) (Type, bool) {
	if len(name) < 3 {
		return "", false
	}
	switch t := Type(name[:3]); t {
	case TypeService, TypeDistribution:
		return t, true
	default:
		return "", false
	}
}

// Item is one piece of switchgear found on the diagram. It is created once
// per unique name and filled in by the extraction and connection stages.
type Item struct {
	Name            string  `json:"equipment"`
	Type            Type    `json:"type"`
	Properties      string  `json:"properties"`
	X               float64 `json:"x_position"`
	Y               float64 `json:"y_position"`
	Page            int     `json:"page"`
	ColorIndex      int     `json:"color_index"`
	ColorName       string  `json:"color_name"`
	ColorHex        string  `json:"color"`
	AlternateSource string  `json:"alternate_from"`
	PrimarySource   string  `json:"primary_from"`
}

// IsService reports whether the item is service switchgear
func (i *Item) IsService() bool {
	return i.Type == TypeService
}

// HasConnections reports whether any supplying item was resolved
func (i *Item) HasConnections() bool {
	return i.PrimarySource != "" || i.AlternateSource != ""
}

// Word is a run of characters on a page with the left and top edges of its
// bounding box in page units, measured from the top-left corner.
type Word struct {
	Text string
	X0   float64
	Top  float64
}

// PageSource provides the text content of a document page by page.
// Page indices are zero based.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
	PageWords(page int) ([]Word, error)
}

// SortByPosition orders items by page, then top edge, then left edge
func SortByPosition(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		return positionLess(items[a], items[b])
	})
}

func positionLess(a, b *Item) bool {
	if a.Page != b.Page {
		return a.Page < b.Page
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// CountByType tallies items per type
func CountByType(items []*Item) map[Type]int {
	counts := make(map[Type]int, 2)
	for _, it := range items {
		counts[it.Type]++
	}
	return counts
}
