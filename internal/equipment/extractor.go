package equipment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Extractor scans documents for switchgear and colors each item by position
type Extractor struct {
	rules  Rules
	logger *zap.Logger
}

// NewExtractor creates an extractor using the given rules
func NewExtractor(rules Rules, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		rules:  rules,
		logger: logger,
	}
}

// Rules returns the rules the extractor was built with
func (e *Extractor) Rules() Rules {
	return e.rules
}

// Extract reads every page of src in order and returns the recognized items
// sorted by page, Y and X. Each item carries its properties, position and
// color. A failure on any page aborts the whole extraction: no partial result
// is returned.
func (e *Extractor) Extract(ctx context.Context, src PageSource) ([]*Item, error) {
	seen := make(map[string]bool)
	var all []*Item

	for page := 0; page < src.NumPages(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := e.extractPage(src, page, seen)
		if err != nil {
			e.logger.Error("equipment extraction failed",
				zap.Int("page", page),
				zap.Error(err))
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		e.logger.Debug("page processed",
			zap.Int("page", page),
			zap.Int("items", len(items)))
		all = append(all, items...)
	}

	SortByPosition(all)
	return all, nil
}

func (e *Extractor) extractPage(src PageSource, page int, seen map[string]bool) ([]*Item, error) {
	text, err := src.PageText(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	words, err := src.PageWords(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract words: %w", err)
	}

	var items []*Item
	for i, w := range words {
		m := NamePattern.FindStringSubmatch(w.Text)
		if m == nil {
			continue
		}
		name := m[1]

		typ, ok := TypeOf(name)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		window := wordWindow(words, i, e.rules.WordsBefore, e.rules.WordsAfter)
		items = append(items, &Item{
			Name:       name,
			Type:       typ,
			Properties: ParseProperties(e.rules.propertyWindow(name, window, text)),
			X:          w.X0,
			Y:          w.Top,
			Page:       page,
		})
	}

	SortByPosition(items)
	stampRows(e.rules.Palette, page, Cluster(items, e.rules.RowThreshold))

	for _, it := range items {
		e.logger.Debug("equipment colored",
			zap.String("equipment", it.Name),
			zap.String("type", string(it.Type)),
			zap.String("color", it.ColorName))
	}
	return items, nil
}
