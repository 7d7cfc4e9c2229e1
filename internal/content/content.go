// Package content renders an item's question and answer and checks typed
// answers. Providers own their content spec types; the engine treats the
// specs as opaque.
package content

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/seanharte/revisit/internal/domain"
)

// Provider resolves an item's content. A render error means the backing
// content is gone; sessions drop such items and continue.
type Provider interface {
	RenderQuestion(item *domain.Item) (string, error)
	RenderAnswer(item *domain.Item) (string, error)
	CheckAnswer(item *domain.Item, typed string) (bool, error)
}

// TextProvider serves items whose specs carry literal text. It is the
// provider the CLI uses; outline- or document-backed providers implement the
// same interface elsewhere.
type TextProvider struct{}

func (TextProvider) RenderQuestion(item *domain.Item) (string, error) {
	switch item.Question.Type {
	case domain.QuestionNone:
		return "", nil
	case domain.QuestionText:
		return item.Question.Text, nil
	default:
		return "", fmt.Errorf("unsupported question type %q for item %s", item.Question.Type, item.ID)
	}
}

func (TextProvider) RenderAnswer(item *domain.Item) (string, error) {
	if item.Answer.Type != domain.AnswerText {
		return "", fmt.Errorf("unsupported answer type %q for item %s", item.Answer.Type, item.ID)
	}
	return item.Answer.Text, nil
}

// CheckAnswer accepts a typed answer contained in the stored text, and
// tolerates a single edit for answers of four or more characters.
func (TextProvider) CheckAnswer(item *domain.Item, typed string) (bool, error) {
	if item.Answer.Type != domain.AnswerText {
		return false, fmt.Errorf("unsupported answer type %q for item %s", item.Answer.Type, item.ID)
	}
	answer := normalize(item.Answer.Text)
	typed = normalize(typed)
	if typed == "" {
		return false, nil
	}
	if strings.Contains(answer, typed) {
		return true, nil
	}
	if len(typed) >= 4 && levenshtein.ComputeDistance(answer, typed) <= 1 {
		return true, nil
	}
	return false, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
