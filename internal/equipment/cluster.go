package equipment

import "math"

// Cluster groups items that are already sorted by (Y, X) into rows.
//
// An item joins the current row when its Y differs from the previous item's
// Y by less than threshold. The comparison is against the previous item, not
// the first item of the row, so a row can drift across a chain of small steps.
func Cluster(items []*Item, threshold float64) [][]*Item {
	var rows [][]*Item
	var current []*Item
	var lastY float64

	for i, it := range items {
		if i == 0 || math.Abs(it.Y-lastY) < threshold {
			current = append(current, it)
		} else {
			rows = append(rows, current)
			current = []*Item{it}
		}
		lastY = it.Y
	}

	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}
