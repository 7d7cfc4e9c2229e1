// Package dashboard computes due and total counts for session selection. The
// numbers are derived fresh on every call; nothing is cached.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/seanharte/revisit/internal/itemstore"
	"github.com/seanharte/revisit/internal/registry"
)

// Row is one scope line: a category, or the all-items summary.
type Row struct {
	CategoryID string
	Name       string
	Due        int
	Total      int
}

// Overview is the dashboard content: the all-items row followed by one row
// per registered category in user order.
type Overview struct {
	All        Row
	Categories []Row
}

// Aggregator reads the item store and the category registry.
type Aggregator struct {
	items      *itemstore.Store
	categories *registry.Registry
}

func New(items *itemstore.Store, categories *registry.Registry) *Aggregator {
	return &Aggregator{items: items, categories: categories}
}

// Overview counts due and total items overall and per category at the given
// instant.
func (a *Aggregator) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	items, err := a.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate items: %w", err)
	}
	categories, err := a.categories.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	overview := &Overview{
		All:        Row{Name: "All items", Total: len(items)},
		Categories: make([]Row, len(categories)),
	}
	for _, item := range items {
		if item.Due(now) {
			overview.All.Due++
		}
	}
	for i, category := range categories {
		row := Row{CategoryID: category.ID, Name: category.Name}
		for _, item := range items {
			if !item.HasCategory(category.ID) {
				continue
			}
			row.Total++
			if item.Due(now) {
				row.Due++
			}
		}
		overview.Categories[i] = row
	}
	return overview, nil
}
