package domain

// Category is a named grouping of items. Ordering lives in the registry list,
// not in the record itself.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// Template is a preset applied at item-creation time. It pre-fills the content
// specs, answer mode and categories of a new item and has no relationship to
// items after creation.
type Template struct {
	ID         string      `json:"id"`
	Name       string      `json:"name" validate:"required"`
	Question   ContentSpec `json:"question"`
	Answer     ContentSpec `json:"answer"`
	AnswerMode AnswerMode  `json:"answerMode" validate:"omitempty,oneof=guess input"`
	Categories []string    `json:"categories"`
}
