package domain

import "time"

// ContentSpec describes how a content provider should produce one side of an
// item. The engine never looks inside it beyond the type tag; Text is only
// meaningful for providers that render literal text.
type ContentSpec struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Question content types understood by the bundled text provider. Providers
// may define their own additional types.
const (
	QuestionNone = "none"
	QuestionText = "text"
)

// Answer content types. AnswerText is rendered by the bundled text provider;
// AnswerNode is the historical default for items whose answer lives in the
// backing content unit and is resolved by an external provider.
const (
	AnswerText = "text"
	AnswerNode = "node"
)

// AnswerMode says how an answer attempt is judged during review.
type AnswerMode string

const (
	// AnswerByGuess means the user self-assesses after seeing the answer.
	AnswerByGuess AnswerMode = "guess"
	// AnswerByInput means the user types an answer that is checked for them.
	AnswerByInput AnswerMode = "input"
)

// ReviewLog records a single review event for an item.
// Rating is the discrete button pressed, an integer in 0..10.
type ReviewLog struct {
	Timestamp time.Time `json:"timestamp"`
	Rating    int       `json:"rating"`
}

// Item is one schedulable fact.
type Item struct {
	ID         string      `json:"id"`
	Question   ContentSpec `json:"question"`
	Answer     ContentSpec `json:"answer"`
	AnswerMode AnswerMode  `json:"answerMode"`
	Categories []string    `json:"categories"`
	History    []ReviewLog `json:"history"`
	LastReview time.Time   `json:"lastReview"`
	NextReview time.Time   `json:"nextReview"`
	Difficulty float64     `json:"difficulty"`
	Interval   int         `json:"interval"`
}

// Scheduling defaults for a freshly created item. Last and next review start
// at yesterday's start of day so a new item is due immediately.
const (
	DefaultDifficulty = 0.3
	DefaultInterval   = 1
)

// Due reports whether the item should appear in a review queue at now.
func (i *Item) Due(now time.Time) bool {
	return i.NextReview.Before(now)
}

// HasCategory reports whether the item is assigned to the given category id.
func (i *Item) HasCategory(categoryID string) bool {
	for _, id := range i.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}
