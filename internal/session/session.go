// Package session drives one review pass over the due items of a scope. The
// session borrows items into a queue, presents them one at a time, applies
// ratings through the scheduler and persists every mutation before the next
// item is presented.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/seanharte/revisit/internal/content"
	"github.com/seanharte/revisit/internal/domain"
	"github.com/seanharte/revisit/internal/itemstore"
	"github.com/seanharte/revisit/internal/sm2"
)

// Clock supplies the current instant. Day granularity is all the engine needs
// but sessions capture a full instant once per operation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// State is the session position in the review state machine.
type State int

const (
	// StateQueued means no item is being presented; call Next.
	StateQueued State = iota
	// StatePresenting means a question is on display; Reveal, Skip or Defer.
	StatePresenting
	// StateRevealed means the answer is on display; Rate, Skip or Defer.
	StateRevealed
	// StateEmpty means the queue is exhausted and the session is over.
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StatePresenting:
		return "presenting"
	case StateRevealed:
		return "revealed"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Scope selects which items a session covers: one category, or all items when
// CategoryID is empty.
type Scope struct {
	CategoryID string
}

// Card is the presented side of the current item.
type Card struct {
	Item     *domain.Item
	Question string
	// AutoReveal is set for question-less items: the UI shows the answer
	// immediately without a reveal step of its own.
	AutoReveal bool
	// Previews holds the interval each rating button would schedule, index
	// matching the 0..10 scale.
	Previews []int
}

// Answer is the revealed side of the current item.
type Answer struct {
	Text string
	// Checked is set when an input-mode answer was compared against the typed
	// text; Correct is display-only and never constrains the rating.
	Checked bool
	Correct bool
}

// Manager builds review sessions.
type Manager struct {
	items    *itemstore.Store
	provider content.Provider
	clock    Clock
	validate *validator.Validate
}

func NewManager(items *itemstore.Store, provider content.Provider, clock Clock) *Manager {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	return &Manager{
		items:    items,
		provider: provider,
		validate: validator.New(),
		clock:    clock,
	}
}

// Session is one in-memory review queue. It is session-local state: abandoning
// it loses nothing beyond ratings already persisted.
type Session struct {
	mgr     *Manager
	queue   []string
	current *domain.Item
	state   State
}

// Start builds the due queue for the scope, earliest due first. The due check
// uses a single instant captured here.
func (m *Manager) Start(ctx context.Context, scope Scope) (*Session, error) {
	now := m.clock.Now()
	items, err := m.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build review queue: %w", err)
	}

	due := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if scope.CategoryID != "" && !item.HasCategory(scope.CategoryID) {
			continue
		}
		if item.Due(now) {
			due = append(due, item)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})

	queue := make([]string, len(due))
	for i, item := range due {
		queue[i] = item.ID
	}
	slog.Info("review session started", "scope", scope.CategoryID, "due", len(queue))
	return &Session{mgr: m, queue: queue, state: StateQueued}, nil
}

// Next pops the next reviewable item. Items that no longer resolve in the
// store or the content provider are dropped silently. Returns nil when the
// queue is exhausted, leaving the session Empty.
func (s *Session) Next(ctx context.Context) (*Card, error) {
	if s.state == StatePresenting || s.state == StateRevealed {
		return nil, fmt.Errorf("cannot advance while %s", s.state)
	}
	for len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]

		item, err := s.mgr.items.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			slog.Debug("dropping stale review item", "id", id)
			continue
		}
		question, err := s.mgr.provider.RenderQuestion(item)
		if err != nil {
			slog.Debug("dropping unresolvable review item", "id", id, "error", err)
			continue
		}

		s.current = item
		s.state = StatePresenting
		return &Card{
			Item:       item,
			Question:   question,
			AutoReveal: item.Question.Type == domain.QuestionNone,
			Previews:   sm2.Simulate(item.Difficulty, item.Interval, item.LastReview, s.mgr.clock.Now()),
		}, nil
	}
	s.current = nil
	s.state = StateEmpty
	return nil, nil
}

// Reveal shows the answer for the current item. For input-mode items the
// typed text is checked; the outcome is display-only. A nil answer means the
// item's content vanished and it was dropped; call Next.
func (s *Session) Reveal(ctx context.Context, typed string) (*Answer, error) {
	if s.state != StatePresenting {
		return nil, fmt.Errorf("cannot reveal while %s", s.state)
	}
	text, err := s.mgr.provider.RenderAnswer(s.current)
	if err != nil {
		slog.Debug("dropping review item on reveal", "id", s.current.ID, "error", err)
		s.current = nil
		s.state = StateQueued
		return nil, nil
	}

	answer := &Answer{Text: text}
	if s.current.AnswerMode == domain.AnswerByInput {
		correct, err := s.mgr.provider.CheckAnswer(s.current, typed)
		if err == nil {
			answer.Checked = true
			answer.Correct = correct
		}
	}
	s.state = StateRevealed
	return answer, nil
}

// Rate applies a performance rating in [0, 1] to the current item: the
// scheduler runs, the history entry is appended and the result is persisted
// before the session moves on. A zero rating re-queues the item at the back
// so it comes around again before the session ends.
func (s *Session) Rate(ctx context.Context, rating float64) error {
	if s.state != StateRevealed {
		return fmt.Errorf("cannot rate while %s", s.state)
	}
	if err := s.mgr.validate.Var(rating, "gte=0,lte=1"); err != nil {
		return fmt.Errorf("rating %v out of range: %w", rating, err)
	}

	now := s.mgr.clock.Now()
	out := sm2.Review(sm2.ReviewInput{
		Difficulty: s.current.Difficulty,
		Interval:   s.current.Interval,
		LastReview: s.current.LastReview,
		Rating:     rating,
		Today:      now,
	})
	entry := domain.ReviewLog{Timestamp: now, Rating: int(math.Round(rating * 10))}

	if _, err := s.mgr.items.UpsertItem(ctx, s.current.ID, itemstore.Patch{
		Difficulty: &out.Difficulty,
		Interval:   &out.Interval,
		NextReview: &out.NextReview,
		LastReview: &now,
		Review:     &entry,
	}); err != nil {
		return fmt.Errorf("failed to persist rating for %s: %w", s.current.ID, err)
	}

	if rating == 0 {
		s.queue = append(s.queue, s.current.ID)
	}
	s.current = nil
	s.state = StateQueued
	return nil
}

// Skip drops the current item from the session without touching it; it stays
// due for a future session.
func (s *Session) Skip() error {
	if s.state != StatePresenting && s.state != StateRevealed {
		return fmt.Errorf("cannot skip while %s", s.state)
	}
	s.current = nil
	s.state = StateQueued
	return nil
}

// Defer pushes the current item to the back of the queue unmodified, so the
// other due items are seen first and it resurfaces later in this session.
func (s *Session) Defer() error {
	if s.state != StatePresenting && s.state != StateRevealed {
		return fmt.Errorf("cannot defer while %s", s.state)
	}
	s.queue = append(s.queue, s.current.ID)
	s.current = nil
	s.state = StateQueued
	return nil
}

// Remaining is the number of queued ids, not counting the current item.
func (s *Session) Remaining() int {
	return len(s.queue)
}

// State returns the session position in the state machine.
func (s *Session) State() State {
	return s.state
}
