package registry

import (
	"context"
	"testing"
	"time"

	"github.com/seanharte/revisit/internal/attrstore"
	"github.com/seanharte/revisit/internal/domain"
	"github.com/seanharte/revisit/internal/itemstore"
	"github.com/seanharte/revisit/internal/settings"
)

var now = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func newTestRegistry() (*Registry, *itemstore.Store) {
	items := itemstore.New(attrstore.NewMemory(), func() time.Time { return now })
	return New(settings.NewMemory(), items), items
}

func TestCategoriesOrderedCRUD(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx := context.Background()

	first, err := reg.AddCategory(ctx, "Geography")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	second, err := reg.AddCategory(ctx, "History")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct category ids")
	}

	categories, err := reg.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Geography" || categories[1].Name != "History" {
		t.Fatalf("unexpected category order: %v", categories)
	}

	// Wholesale save controls ordering.
	if err := reg.SaveCategories(ctx, []domain.Category{second, first}); err != nil {
		t.Fatalf("save categories: %v", err)
	}
	categories, err = reg.Categories(ctx)
	if err != nil {
		t.Fatalf("categories after reorder: %v", err)
	}
	if categories[0].Name != "History" {
		t.Fatalf("reorder not persisted: %v", categories)
	}
}

func TestAddCategoryRejectsEmptyName(t *testing.T) {
	reg, _ := newTestRegistry()

	if _, err := reg.AddCategory(context.Background(), ""); err == nil {
		t.Fatal("expected validation error for empty category name")
	}
}

func TestRemoveCategoryCascadesWithoutHistory(t *testing.T) {
	reg, items := newTestRegistry()
	ctx := context.Background()

	geo, err := reg.AddCategory(ctx, "Geography")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	hist, err := reg.AddCategory(ctx, "History")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}

	both := []string{geo.ID, hist.ID}
	if _, err := items.UpsertItem(ctx, "item-1", itemstore.Patch{Categories: &both}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	only := []string{hist.ID}
	if _, err := items.UpsertItem(ctx, "item-2", itemstore.Patch{Categories: &only}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := reg.RemoveCategory(ctx, geo.ID); err != nil {
		t.Fatalf("remove category: %v", err)
	}

	categories, err := reg.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != hist.ID {
		t.Fatalf("category not removed from registry: %v", categories)
	}

	item, err := items.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.HasCategory(geo.ID) {
		t.Errorf("item-1 still carries removed category: %v", item.Categories)
	}
	if !item.HasCategory(hist.ID) {
		t.Errorf("item-1 lost an unrelated category: %v", item.Categories)
	}
	if len(item.History) != 0 {
		t.Errorf("cascade appended history: %v", item.History)
	}

	item2, err := items.GetItem(ctx, "item-2")
	if err != nil {
		t.Fatalf("get item-2: %v", err)
	}
	if len(item2.Categories) != 1 {
		t.Errorf("untouched item rewritten: %v", item2.Categories)
	}
}

func TestTemplateSaveAndApply(t *testing.T) {
	reg, items := newTestRegistry()
	ctx := context.Background()

	template, err := reg.SaveTemplate(ctx, domain.Template{
		Name:       "Vocab",
		Question:   domain.ContentSpec{Type: domain.QuestionText, Text: "translate"},
		Answer:     domain.ContentSpec{Type: domain.AnswerText},
		AnswerMode: domain.AnswerByInput,
		Categories: []string{"lang"},
	})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	if template.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	// Saving again with the same id updates in place.
	template.Name = "Vocabulary"
	if _, err := reg.SaveTemplate(ctx, template); err != nil {
		t.Fatalf("update template: %v", err)
	}
	templates, err := reg.Templates(ctx)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 1 || templates[0].Name != "Vocabulary" {
		t.Fatalf("expected in-place update, got %v", templates)
	}

	patch, err := reg.Apply(ctx, template)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	item, err := items.UpsertItem(ctx, "item-1", patch)
	if err != nil {
		t.Fatalf("create from template: %v", err)
	}
	if item.Question.Text != "translate" || item.AnswerMode != domain.AnswerByInput {
		t.Errorf("template fields not copied: %+v", item)
	}
	if item.Difficulty != domain.DefaultDifficulty || item.Interval != domain.DefaultInterval {
		t.Errorf("template must not touch scheduling defaults: %+v", item)
	}

	lastUsed, err := reg.LastUsedTemplateID(ctx)
	if err != nil {
		t.Fatalf("last used: %v", err)
	}
	if lastUsed != template.ID {
		t.Errorf("expected last used template %s, got %s", template.ID, lastUsed)
	}
}

func TestRemoveTemplateLeavesItemsAlone(t *testing.T) {
	reg, items := newTestRegistry()
	ctx := context.Background()

	template, err := reg.SaveTemplate(ctx, domain.Template{Name: "Vocab"})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	patch, err := reg.Apply(ctx, template)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := items.UpsertItem(ctx, "item-1", patch); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := reg.RemoveTemplate(ctx, template.ID); err != nil {
		t.Fatalf("remove template: %v", err)
	}

	templates, err := reg.Templates(ctx)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("template not removed: %v", templates)
	}

	item, err := items.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item == nil {
		t.Fatal("item deleted by template removal")
	}
}
