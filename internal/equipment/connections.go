package equipment

// ResolveConnections fills the primary and alternate sources of every
// distribution item. Distribution items are fed by the first two service
// items on their page in position order; a page without service items falls
// back to the first two service items of the document. With a single
// candidate only the primary source is set. Items are updated in place and
// the same slice is returned.
func ResolveConnections(items []*Item) []*Item {
	var services []*Item
	byPage := make(map[int][]*Item)
	var pages []int

	for _, it := range items {
		switch it.Type {
		case TypeService:
			services = append(services, it)
		case TypeDistribution:
			if _, ok := byPage[it.Page]; !ok {
				pages = append(pages, it.Page)
			}
			byPage[it.Page] = append(byPage[it.Page], it)
		}
	}

	if len(services) == 0 {
		return items
	}
	SortByPosition(services)

	for _, page := range pages {
		feeders := servicesOnPage(services, page)
		if len(feeders) == 0 {
			feeders = services[:min(2, len(services))]
		}

		for _, it := range byPage[page] {
			switch {
			case len(feeders) >= 2:
				it.PrimarySource = feeders[0].Name
				it.AlternateSource = feeders[1].Name
			case len(feeders) == 1:
				it.PrimarySource = feeders[0].Name
			}
		}
	}

	return items
}

func servicesOnPage(services []*Item, page int) []*Item {
	var out []*Item
	for _, s := range services {
		if s.Page == page {
			out = append(out, s)
		}
	}
	return out
}
