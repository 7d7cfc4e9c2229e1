// Package registry manages the ordered category and template lists. Both live
// in the settings store and are read and written wholesale; list order is the
// user-chosen position.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/seanharte/revisit/internal/domain"
	"github.com/seanharte/revisit/internal/itemstore"
	"github.com/seanharte/revisit/internal/settings"
)

const (
	settingCategories       = "categories"
	settingTemplates        = "templates"
	settingLastUsedTemplate = "lastUsedTemplateId"
)

// Registry is the category and template store. Category deletion cascades
// through the item store; templates never touch existing items.
type Registry struct {
	settings settings.Store
	items    *itemstore.Store
	validate *validator.Validate
}

func New(store settings.Store, items *itemstore.Store) *Registry {
	return &Registry{
		settings: store,
		items:    items,
		validate: validator.New(),
	}
}

// Categories returns the ordered category list, empty when never saved.
func (r *Registry) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.getList(ctx, settingCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveCategories replaces the whole ordered list.
func (r *Registry) SaveCategories(ctx context.Context, categories []domain.Category) error {
	for _, category := range categories {
		if err := r.validate.Struct(category); err != nil {
			return fmt.Errorf("invalid category %s: %w", category.ID, err)
		}
	}
	return r.putList(ctx, settingCategories, categories)
}

// AddCategory appends a new category at the end of the list.
func (r *Registry) AddCategory(ctx context.Context, name string) (domain.Category, error) {
	category := domain.Category{ID: uuid.New().String(), Name: name}
	if err := r.validate.Struct(category); err != nil {
		return domain.Category{}, fmt.Errorf("invalid category: %w", err)
	}
	categories, err := r.Categories(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	if err := r.putList(ctx, settingCategories, append(categories, category)); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// RemoveCategory deletes the category and rewrites every item that carried it.
// The item rewrite is a metadata edit: no history entries are appended and no
// scheduling state changes.
func (r *Registry) RemoveCategory(ctx context.Context, id string) error {
	categories, err := r.Categories(ctx)
	if err != nil {
		return err
	}
	kept := categories[:0]
	for _, category := range categories {
		if category.ID != id {
			kept = append(kept, category)
		}
	}
	if err := r.putList(ctx, settingCategories, kept); err != nil {
		return err
	}

	items, err := r.items.ListItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if !item.HasCategory(id) {
			continue
		}
		remaining := make([]string, 0, len(item.Categories))
		for _, categoryID := range item.Categories {
			if categoryID != id {
				remaining = append(remaining, categoryID)
			}
		}
		if _, err := r.items.UpsertItem(ctx, item.ID, itemstore.Patch{Categories: &remaining}); err != nil {
			return fmt.Errorf("failed to detach category %s from item %s: %w", id, item.ID, err)
		}
	}
	return nil
}

// Templates returns the ordered template list, empty when never saved.
func (r *Registry) Templates(ctx context.Context) ([]domain.Template, error) {
	var templates []domain.Template
	if err := r.getList(ctx, settingTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SaveTemplates replaces the whole ordered list.
func (r *Registry) SaveTemplates(ctx context.Context, templates []domain.Template) error {
	for _, template := range templates {
		if err := r.validate.Struct(template); err != nil {
			return fmt.Errorf("invalid template %s: %w", template.ID, err)
		}
	}
	return r.putList(ctx, settingTemplates, templates)
}

// SaveTemplate updates the template with a matching id in place, or appends
// it as new. A template without an id gets one.
func (r *Registry) SaveTemplate(ctx context.Context, template domain.Template) (domain.Template, error) {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	if err := r.validate.Struct(template); err != nil {
		return domain.Template{}, fmt.Errorf("invalid template: %w", err)
	}
	templates, err := r.Templates(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	fresh := true
	for i, existing := range templates {
		if existing.ID == template.ID {
			templates[i] = template
			fresh = false
			break
		}
	}
	if fresh {
		templates = append(templates, template)
	}
	if err := r.putList(ctx, settingTemplates, templates); err != nil {
		return domain.Template{}, err
	}
	return template, nil
}

// RemoveTemplate deletes the template. Existing items are never touched.
func (r *Registry) RemoveTemplate(ctx context.Context, id string) error {
	templates, err := r.Templates(ctx)
	if err != nil {
		return err
	}
	kept := templates[:0]
	for _, template := range templates {
		if template.ID != id {
			kept = append(kept, template)
		}
	}
	return r.putList(ctx, settingTemplates, kept)
}

// LastUsedTemplateID returns the remembered template choice, empty when none.
func (r *Registry) LastUsedTemplateID(ctx context.Context) (string, error) {
	raw, err := r.settings.Get(ctx, settingLastUsedTemplate)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("failed to decode last used template id: %w", err)
	}
	return id, nil
}

func (r *Registry) SetLastUsedTemplateID(ctx context.Context, id string) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode last used template id: %w", err)
	}
	return r.settings.Put(ctx, settingLastUsedTemplate, raw)
}

// Apply turns a template into the creation patch for a new item. Only the
// content specs, answer mode and categories are copied; scheduling state
// always starts at the item defaults. The template choice is remembered.
func (r *Registry) Apply(ctx context.Context, template domain.Template) (itemstore.Patch, error) {
	if err := r.SetLastUsedTemplateID(ctx, template.ID); err != nil {
		return itemstore.Patch{}, err
	}
	question := template.Question
	answer := template.Answer
	mode := template.AnswerMode
	if mode == "" {
		mode = domain.AnswerByGuess
	}
	categories := append([]string{}, template.Categories...)
	return itemstore.Patch{
		Question:   &question,
		Answer:     &answer,
		AnswerMode: &mode,
		Categories: &categories,
	}, nil
}

func (r *Registry) getList(ctx context.Context, name string, out any) error {
	raw, err := r.settings.Get(ctx, name)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", name, err)
	}
	return nil
}

func (r *Registry) putList(ctx context.Context, name string, list any) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", name, err)
	}
	return r.settings.Put(ctx, name, raw)
}
