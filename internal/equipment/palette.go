package equipment

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// AnchorIndex is the palette slot reserved for service switchgear and for the
// origin positions of the distribution layout.
const AnchorIndex = 0

// Color is a named palette entry. Hex is six hex digits without a leading #.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// RGBA parses the hex value
func (c Color) RGBA() (color.RGBA, error) {
	return ParseHex(c.Hex)
}

// Palette is the ordered color table. Index 0 is the anchor color.
type Palette []Color

// DefaultPalette is the color table used on the source diagrams
var DefaultPalette = Palette{
	{Name: "Black", Hex: "333333"},
	{Name: "Red", Hex: "FFB3B3"},
	{Name: "Blue", Hex: "B3D9FF"},
	{Name: "Orange", Hex: "FFD9B3"},
	{Name: "Pink", Hex: "FFB3E6"},
	{Name: "Purple", Hex: "D9B3FF"},
	{Name: "Yellow", Hex: "FFFF99"},
	{Name: "Light Grey", Hex: "E6E6E6"},
}

// Size returns the number of entries
func (p Palette) Size() int {
	return len(p)
}

// At returns the entry for index, or a zero Color when out of range
func (p Palette) At(index int) Color {
	if index < 0 || index >= len(p) {
		return Color{}
	}
	return p[index]
}

// ParseHex converts RRGGBB (an optional leading # is accepted) to an opaque color
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color hex %q: want 6 digits", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color hex %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Brightness is the perceptual luma of c on a 0-255 scale
func Brightness(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
