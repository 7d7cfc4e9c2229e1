package itemstore

import (
	"context"
	"testing"
	"time"

	"github.com/seanharte/revisit/internal/attrstore"
	"github.com/seanharte/revisit/internal/domain"
	"github.com/seanharte/revisit/internal/sm2"
)

var now = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func newTestStore() *Store {
	return New(attrstore.NewMemory(), func() time.Time { return now })
}

func TestUpsertCreatesWithDefaults(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	// An empty patch on a fresh id must still produce a well-formed item.
	item, err := store.UpsertItem(ctx, "item-1", Patch{})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if item.Difficulty != domain.DefaultDifficulty {
		t.Errorf("expected default difficulty 0.3, got %v", item.Difficulty)
	}
	if item.Interval != domain.DefaultInterval {
		t.Errorf("expected default interval 1, got %d", item.Interval)
	}
	yesterday := sm2.StartOfDay(now).AddDate(0, 0, -1)
	if !item.LastReview.Equal(yesterday) || !item.NextReview.Equal(yesterday) {
		t.Errorf("expected last/next review at yesterday start of day, got %v / %v", item.LastReview, item.NextReview)
	}
	if len(item.History) != 0 {
		t.Errorf("expected empty history, got %v", item.History)
	}
	if item.Question.Type != domain.QuestionNone || item.Answer.Type != domain.AnswerNode {
		t.Errorf("unexpected default content specs: %+v / %+v", item.Question, item.Answer)
	}
	if item.AnswerMode != domain.AnswerByGuess {
		t.Errorf("expected default answer mode guess, got %s", item.AnswerMode)
	}
	if !item.Due(now) {
		t.Error("a freshly created item should be due immediately")
	}
}

func TestUpsertMergesPartialWrites(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	question := domain.ContentSpec{Type: domain.QuestionText, Text: "capital of France?"}
	answer := domain.ContentSpec{Type: domain.AnswerText, Text: "Paris"}
	categories := []string{"geo"}
	if _, err := store.UpsertItem(ctx, "item-1", Patch{
		Question:   &question,
		Answer:     &answer,
		Categories: &categories,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Writing only difficulty must keep every other field intact.
	d := 0.8
	if _, err := store.UpsertItem(ctx, "item-1", Patch{Difficulty: &d}); err != nil {
		t.Fatalf("partial upsert: %v", err)
	}

	item, err := store.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.Difficulty != 0.8 {
		t.Errorf("expected difficulty 0.8, got %v", item.Difficulty)
	}
	if item.Question.Text != "capital of France?" || item.Answer.Text != "Paris" {
		t.Errorf("content specs lost in merge: %+v / %+v", item.Question, item.Answer)
	}
	if len(item.Categories) != 1 || item.Categories[0] != "geo" {
		t.Errorf("categories lost in merge: %v", item.Categories)
	}
	if item.Interval != domain.DefaultInterval {
		t.Errorf("interval lost in merge: %d", item.Interval)
	}
}

func TestHistoryAppendsOnlyOnRatingEvents(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	categories := []string{"geo"}
	if _, err := store.UpsertItem(ctx, "item-1", Patch{Categories: &categories}); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := store.UpsertItem(ctx, "item-1", Patch{
		Review: &domain.ReviewLog{Timestamp: now, Rating: 10},
	})
	if err != nil {
		t.Fatalf("rating upsert: %v", err)
	}
	if len(item.History) != 1 || item.History[0].Rating != 10 {
		t.Fatalf("expected one history entry, got %v", item.History)
	}

	// A metadata edit must not append.
	other := []string{"geo", "capitals"}
	item, err = store.UpsertItem(ctx, "item-1", Patch{Categories: &other})
	if err != nil {
		t.Fatalf("metadata upsert: %v", err)
	}
	if len(item.History) != 1 {
		t.Fatalf("metadata edit appended history: %v", item.History)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := newTestStore()

	item, err := store.GetItem(context.Background(), "gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for a missing item, got %+v", item)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	if _, err := store.UpsertItem(ctx, "item-1", Patch{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.RemoveItem(ctx, "item-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.RemoveItem(ctx, "item-1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	item, err := store.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Errorf("expected item gone after remove, got %+v", item)
	}
}

func TestListItemsAndIDs(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.UpsertItem(ctx, id, Patch{}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	ids, err := store.ListItemIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %v", ids)
	}

	items, err := store.ListItems(ctx)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}
