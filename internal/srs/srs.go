// Package srs implements the spaced-repetition transition function: a pure
// mapping from (item state, grade, time) to the item's next scheduling state.
package srs

import (
	"time"

	"github.com/example/pintrain/pkg/models"
)

// Scheduler holds the tuning knobs of the SM-2-derived policy.
type Scheduler struct {
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
	// PromotionStreak is how many consecutive non-Again reviews move an
	// item from learning to review.
	PromotionStreak int
	// PromotionBaseDays seeds the first review-stage interval, scaled by
	// the grade multiplier.
	PromotionBaseDays int
	// GraduationStreak and GraduationMinDays gate the graduated tag.
	GraduationStreak  int
	GraduationMinDays int
	// Ease adjustments, fixed-point ×models.EaseScale.
	AgainPenalty int
	HardPenalty  int
	EasyBonus    int
	// Interval multipliers per grade, fixed-point ×models.EaseScale.
	HardMultiplier int
	EasyMultiplier int
}

// New returns a scheduler with the default policy.
func New() *Scheduler {
	return &Scheduler{
		MaxIntervalDays:   365,
		PromotionStreak:   2,
		PromotionBaseDays: 6,
		GraduationStreak:  8,
		GraduationMinDays: 30,
		AgainPenalty:      200,
		HardPenalty:       150,
		EasyBonus:         150,
		HardMultiplier:    800,
		EasyMultiplier:    1300,
	}
}

// Transition applies one review to the item state and returns the rescheduled
// state. It is pure: the input state is not modified, no I/O happens, and the
// only failure mode is an out-of-range grade.
//
// Again drops any stage to relearning with a zero-day interval, so the item
// is requeued within the same session rather than pushed to the next day.
func (s *Scheduler) Transition(state models.ItemState, grade Grade, now time.Time) (models.ItemState, error) {
	if !grade.IsValid() {
		return models.ItemState{}, ErrInvalidGrade
	}

	next := state
	next.UpdatedAt = now

	if grade == Again {
		next.Stage = models.StageRelearning
		next.Repetitions = 0
		next.IntervalDays = 0
		next.EaseFactor = clampEase(state.EaseFactor - s.AgainPenalty)
		next.NextReviewDate = now
		return next, nil
	}

	switch state.Stage {
	case models.StageNew, models.StageRelearning:
		// First success on a fresh or failed item restarts the climb.
		next.Stage = models.StageLearning
		next.Repetitions = 1
		next.IntervalDays = 1

	case models.StageLearning:
		next.Repetitions = state.Repetitions + 1
		if next.Repetitions >= s.PromotionStreak {
			next.Stage = models.StageReview
			next.IntervalDays = s.clampInterval(scaleDays(s.PromotionBaseDays, s.multiplier(grade)))
		} else {
			next.IntervalDays = 1
		}

	case models.StageReview, models.StageGraduated:
		next.EaseFactor = clampEase(state.EaseFactor + s.easeDelta(grade))
		grown := mulFixed(state.IntervalDays, next.EaseFactor, s.multiplier(grade))
		next.IntervalDays = s.clampInterval(grown)
		next.Repetitions = state.Repetitions + 1
		if state.Stage == models.StageReview &&
			next.Repetitions >= s.GraduationStreak &&
			next.IntervalDays >= s.GraduationMinDays {
			next.Stage = models.StageGraduated
		}

	default:
		// Unknown stages behave like new items rather than erroring; the
		// function stays total over well-formed states.
		next.Stage = models.StageLearning
		next.Repetitions = 1
		next.IntervalDays = 1
	}

	next.NextReviewDate = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}

func (s *Scheduler) multiplier(grade Grade) int {
	switch grade {
	case Hard:
		return s.HardMultiplier
	case Easy:
		return s.EasyMultiplier
	default:
		return models.EaseScale
	}
}

func (s *Scheduler) easeDelta(grade Grade) int {
	switch grade {
	case Hard:
		return -s.HardPenalty
	case Easy:
		return s.EasyBonus
	default:
		return 0
	}
}

func (s *Scheduler) clampInterval(days int) int {
	if days < 1 {
		return 1
	}
	if days > s.MaxIntervalDays {
		return s.MaxIntervalDays
	}
	return days
}

func clampEase(ease int) int {
	if ease < models.MinEaseFactor {
		return models.MinEaseFactor
	}
	return ease
}

// mulFixed computes round(days × ease × mult) where ease and mult are
// fixed-point ×EaseScale. Integer arithmetic keeps results reproducible;
// rounding (not truncating) avoids systematic under-scheduling.
func mulFixed(days, ease, mult int) int {
	const scale = int64(models.EaseScale) * int64(models.EaseScale)
	n := int64(days) * int64(ease) * int64(mult)
	return int((n + scale/2) / scale)
}

// scaleDays computes round(days × mult) with mult fixed-point ×EaseScale.
func scaleDays(days, mult int) int {
	n := int64(days) * int64(mult)
	return int((n + models.EaseScale/2) / models.EaseScale)
}
