package equipment

// AssignColor maps a distribution item's position to a palette index.
//
// row counts distribution rows from zero; col is the item's position in its
// row and rowLen the number of items in that row.
//   - first distribution row of page 0: column 0 is the anchor, column c is c mod n
//   - first distribution row of page 1: the last column is the anchor
//   - everywhere else: column c is (c+1) mod n
func AssignColor(p Palette, page, row, col, rowLen int) int {
	n := p.Size()
	if n == 0 {
		return AnchorIndex
	}

	switch {
	case page == 0 && row == 0:
		if col == 0 {
			return AnchorIndex
		}
		return col % n
	case page == 1 && row == 0 && col == rowLen-1:
		return AnchorIndex
	default:
		return (col + 1) % n
	}
}

// stampRows colors every item of a page's rows. Rows led by a service item
// take the anchor color throughout; any other row is colored by position,
// with the assigner's row index one less than the row's index on the page.
func stampRows(p Palette, page int, rows [][]*Item) {
	for rowIdx, row := range rows {
		if row[0].IsService() {
			for _, it := range row {
				stamp(p, it, AnchorIndex)
			}
			continue
		}

		for col, it := range row {
			if it.IsService() {
				stamp(p, it, AnchorIndex)
				continue
			}
			stamp(p, it, AssignColor(p, page, rowIdx-1, col, len(row)))
		}
	}
}

func stamp(p Palette, it *Item, index int) {
	c := p.At(index)
	it.ColorIndex = index
	it.ColorName = c.Name
	it.ColorHex = c.Hex
}
