// Package sm2 implements the percent-overdue SM-2 variant used to schedule
// item reviews. Review is a pure function: callers persist the outcome and
// append their own history entries.
package sm2

import (
	"math"
	"time"
)

const (
	// correctThreshold is the rating below which an attempt counts as a
	// failure for overdue purposes.
	correctThreshold = 0.6
	// maxIntervalDays caps scheduling at two years out.
	maxIntervalDays = 730
	// maxOverdue clamps the percent-overdue factor.
	maxOverdue = 2.0
)

// ReviewInput is the scheduling state of an item plus one performance rating.
// Rating is a value in [0, 1]; the UI exposes it as 11 discrete buttons 0..10.
type ReviewInput struct {
	Difficulty float64
	Interval   int
	LastReview time.Time
	Rating     float64
	Today      time.Time
}

// Outcome is the next scheduling state after a review.
type Outcome struct {
	Difficulty float64
	Interval   int
	NextReview time.Time
}

// Review computes the next difficulty, interval and due date for one rating
// event. Interval 0 in the outcome means "due again immediately".
func Review(in ReviewInput) Outcome {
	today := StartOfDay(in.Today)

	percentOverdue := 1.0
	if in.Rating >= correctThreshold {
		if in.Interval <= 0 {
			// A zero interval means the item was forgotten outright on its
			// previous review and never rescheduled; treat it as maximally
			// overdue rather than dividing by zero.
			percentOverdue = maxOverdue
		} else {
			daysSince := float64(WholeDaysBetween(in.LastReview, today)) / float64(in.Interval)
			percentOverdue = math.Min(daysSince, maxOverdue)
		}
	}

	difficulty := clamp(in.Difficulty+percentOverdue*(8-9*in.Rating)/17, 0, 1)
	difficultyWeight := 3 - 1.7*difficulty

	var interval int
	switch {
	case in.Rating >= correctThreshold:
		interval = clampInt(in.Interval*(1+int(math.Round((difficultyWeight-1)*percentOverdue))), 1, maxIntervalDays)
	case in.Rating == 0:
		// Forgot completely: force an immediate re-queue.
		interval = 0
	default:
		interval = clampInt(int(math.Round(float64(in.Interval)*difficultyWeight/3)), 1, maxIntervalDays)
	}

	return Outcome{
		Difficulty: difficulty,
		Interval:   interval,
		NextReview: today.AddDate(0, 0, interval),
	}
}

// Scale returns the 11 discrete ratings a review UI offers, lowest first.
func Scale() []float64 {
	ratings := make([]float64, 11)
	for i := range ratings {
		ratings[i] = float64(i) / 10
	}
	return ratings
}

// Simulate returns the interval each rating on the scale would produce for the
// given state, for showing a per-button preview next to the rating buttons.
func Simulate(difficulty float64, interval int, lastReview, today time.Time) []int {
	intervals := make([]int, 11)
	for i, rating := range Scale() {
		intervals[i] = Review(ReviewInput{
			Difficulty: difficulty,
			Interval:   interval,
			LastReview: lastReview,
			Rating:     rating,
			Today:      today,
		}).Interval
	}
	return intervals
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WholeDaysBetween counts whole days from the start of a's day to the start
// of b's day.
func WholeDaysBetween(a, b time.Time) int {
	return int(math.Round(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
