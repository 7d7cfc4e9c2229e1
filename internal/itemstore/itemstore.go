// Package itemstore is the typed item layer over the attribute store. It owns
// the merge-write semantics: a partial write keeps every unsupplied field from
// the stored item, or falls back to the creation defaults for a new id.
package itemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seanharte/revisit/internal/attrstore"
	"github.com/seanharte/revisit/internal/domain"
	"github.com/seanharte/revisit/internal/sm2"
)

// ItemAttr is the well-known attribute name the item record is stored under.
const ItemAttr = "sr"

// Store reads and writes items through an attribute store.
type Store struct {
	attrs attrstore.Store
	now   func() time.Time
}

// New returns a store using now for creation defaults. A nil now uses the
// wall clock.
func New(attrs attrstore.Store, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{attrs: attrs, now: now}
}

// Patch is a partial item write. Nil fields keep their stored value. Review,
// when set, appends one history entry; plain metadata edits leave history
// untouched.
type Patch struct {
	Question   *domain.ContentSpec
	Answer     *domain.ContentSpec
	AnswerMode *domain.AnswerMode
	Categories *[]string
	Difficulty *float64
	Interval   *int
	LastReview *time.Time
	NextReview *time.Time
	Review     *domain.ReviewLog
}

// GetItem returns the stored item, or (nil, nil) when the id has no item
// record. Callers treat nil as "stale, drop from queues".
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	attrs, err := s.attrs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", id, err)
	}
	raw, ok := attrs[ItemAttr]
	if !ok {
		return nil, nil
	}
	var item domain.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", id, err)
	}
	item.ID = id
	if item.Categories == nil {
		item.Categories = []string{}
	}
	if item.History == nil {
		item.History = []domain.ReviewLog{}
	}
	return &item, nil
}

// UpsertItem merge-writes the patch at id and returns the resulting item. A
// new id starts from the creation defaults, so even an empty patch produces a
// well-formed item.
func (s *Store) UpsertItem(ctx context.Context, id string, patch Patch) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = s.defaultItem(id)
	}

	if patch.Question != nil {
		item.Question = *patch.Question
	}
	if patch.Answer != nil {
		item.Answer = *patch.Answer
	}
	if patch.AnswerMode != nil {
		item.AnswerMode = *patch.AnswerMode
	}
	if patch.Categories != nil {
		item.Categories = append([]string{}, (*patch.Categories)...)
	}
	if patch.Difficulty != nil {
		item.Difficulty = *patch.Difficulty
	}
	if patch.Interval != nil {
		item.Interval = *patch.Interval
	}
	if patch.LastReview != nil {
		item.LastReview = *patch.LastReview
	}
	if patch.NextReview != nil {
		item.NextReview = *patch.NextReview
	}
	if patch.Review != nil {
		item.History = append(item.History, *patch.Review)
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item %s: %w", id, err)
	}
	// Full overwrite of the record: the item layer owns every attribute at
	// its ids.
	if err := s.attrs.Put(ctx, id, attrstore.Attrs{ItemAttr: raw}); err != nil {
		return nil, fmt.Errorf("failed to store item %s: %w", id, err)
	}
	return item, nil
}

// RemoveItem deletes the item's record. Removing an unknown id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	if err := s.attrs.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", id, err)
	}
	return nil
}

// ListItemIDs enumerates every indexed item id without decoding payloads.
func (s *Store) ListItemIDs(ctx context.Context) ([]string, error) {
	ids, err := s.attrs.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list item ids: %w", err)
	}
	return ids, nil
}

// ListItems returns every stored item regardless of due state. Ids whose item
// attribute has gone missing are skipped.
func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	ids, err := s.ListItemIDs(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *Store) defaultItem(id string) *domain.Item {
	yesterday := sm2.StartOfDay(s.now()).AddDate(0, 0, -1)
	return &domain.Item{
		ID:         id,
		Question:   domain.ContentSpec{Type: domain.QuestionNone},
		Answer:     domain.ContentSpec{Type: domain.AnswerNode},
		AnswerMode: domain.AnswerByGuess,
		Categories: []string{},
		History:    []domain.ReviewLog{},
		LastReview: yesterday,
		NextReview: yesterday,
		Difficulty: domain.DefaultDifficulty,
		Interval:   domain.DefaultInterval,
	}
}
