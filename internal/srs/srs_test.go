package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/example/pintrain/pkg/models"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func reviewState(interval, ease, reps int) models.ItemState {
	return models.ItemState{
		UserID:       "u1",
		ItemID:       "i1",
		ItemType:     models.ItemTypeCharacter,
		Stage:        models.StageReview,
		EaseFactor:   ease,
		IntervalDays: interval,
		Repetitions:  reps,
	}
}

func TestTransitionNewItemGood(t *testing.T) {
	s := New()
	state := models.NewItemState("u1", "i1", models.ItemTypeCharacter, testNow)

	got, err := s.Transition(state, Good, testNow)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Stage != models.StageLearning {
		t.Errorf("Stage = %q, want %q", got.Stage, models.StageLearning)
	}
	if got.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if got.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", got.Repetitions)
	}
	if want := testNow.AddDate(0, 0, 1); !got.NextReviewDate.Equal(want) {
		t.Errorf("NextReviewDate = %v, want %v", got.NextReviewDate, want)
	}
}

func TestTransitionReviewAgain(t *testing.T) {
	s := New()
	state := reviewState(10, 2500, 5)

	got, err := s.Transition(state, Again, testNow)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Stage != models.StageRelearning {
		t.Errorf("Stage = %q, want %q", got.Stage, models.StageRelearning)
	}
	if got.IntervalDays != 0 {
		t.Errorf("IntervalDays = %d, want 0", got.IntervalDays)
	}
	if got.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", got.Repetitions)
	}
	if got.EaseFactor != 2300 {
		t.Errorf("EaseFactor = %d, want 2300", got.EaseFactor)
	}
	if !got.NextReviewDate.Equal(testNow) {
		t.Errorf("NextReviewDate = %v, want %v (due immediately)", got.NextReviewDate, testNow)
	}
}

func TestTransitionAgainFromEveryStage(t *testing.T) {
	s := New()
	stages := []models.Stage{
		models.StageNew, models.StageLearning, models.StageReview,
		models.StageRelearning, models.StageGraduated,
	}
	for _, stage := range stages {
		state := reviewState(10, 2500, 5)
		state.Stage = stage

		got, err := s.Transition(state, Again, testNow)
		if err != nil {
			t.Fatalf("stage %q: %v", stage, err)
		}
		if got.Stage != models.StageRelearning {
			t.Errorf("stage %q: Stage = %q, want relearning", stage, got.Stage)
		}
		if got.IntervalDays != 0 {
			t.Errorf("stage %q: IntervalDays = %d, want 0", stage, got.IntervalDays)
		}
	}
}

func TestEaseFactorNeverBelowFloor(t *testing.T) {
	s := New()
	state := reviewState(10, 2500, 5)

	// Repeated failures must converge on the floor, not below it.
	for i := 0; i < 20; i++ {
		var err error
		state, err = s.Transition(state, Again, testNow)
		if err != nil {
			t.Fatalf("Transition %d: %v", i, err)
		}
		if state.EaseFactor < models.MinEaseFactor {
			t.Fatalf("Transition %d: EaseFactor = %d, below floor %d", i, state.EaseFactor, models.MinEaseFactor)
		}
	}
	if state.EaseFactor != models.MinEaseFactor {
		t.Errorf("EaseFactor = %d, want floor %d after repeated Again", state.EaseFactor, models.MinEaseFactor)
	}

	// Hard on a floored item stays at the floor too.
	got, err := s.Transition(reviewState(10, models.MinEaseFactor, 3), Hard, testNow)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.EaseFactor != models.MinEaseFactor {
		t.Errorf("EaseFactor = %d, want floor %d after Hard", got.EaseFactor, models.MinEaseFactor)
	}
}

func TestIntervalMonotonicAcrossGrades(t *testing.T) {
	s := New()
	base := reviewState(10, 2500, 5)

	easy, err := s.Transition(base, Easy, testNow)
	if err != nil {
		t.Fatal(err)
	}
	good, err := s.Transition(base, Good, testNow)
	if err != nil {
		t.Fatal(err)
	}
	hard, err := s.Transition(base, Hard, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if easy.IntervalDays < good.IntervalDays {
		t.Errorf("Easy interval %d < Good interval %d", easy.IntervalDays, good.IntervalDays)
	}
	if good.IntervalDays < hard.IntervalDays {
		t.Errorf("Good interval %d < Hard interval %d", good.IntervalDays, hard.IntervalDays)
	}
	if hard.Stage != models.StageReview {
		t.Errorf("Hard must not reset stage, got %q", hard.Stage)
	}
}

func TestReviewGrowthAndEaseNudges(t *testing.T) {
	s := New()
	base := reviewState(10, 2500, 5)

	good, _ := s.Transition(base, Good, testNow)
	if good.IntervalDays != 25 { // round(10 × 2.5 × 1.0)
		t.Errorf("Good IntervalDays = %d, want 25", good.IntervalDays)
	}
	if good.EaseFactor != 2500 {
		t.Errorf("Good EaseFactor = %d, want unchanged 2500", good.EaseFactor)
	}

	easy, _ := s.Transition(base, Easy, testNow)
	if easy.EaseFactor != 2650 {
		t.Errorf("Easy EaseFactor = %d, want 2650", easy.EaseFactor)
	}
	if easy.IntervalDays != 34 { // round(10 × 2.65 × 1.3) = round(34.45)
		t.Errorf("Easy IntervalDays = %d, want 34", easy.IntervalDays)
	}

	hard, _ := s.Transition(base, Hard, testNow)
	if hard.EaseFactor != 2350 {
		t.Errorf("Hard EaseFactor = %d, want 2350", hard.EaseFactor)
	}
	if hard.IntervalDays != 19 { // round(10 × 2.35 × 0.8) = round(18.8)
		t.Errorf("Hard IntervalDays = %d, want 19", hard.IntervalDays)
	}
}

func TestLearningPromotion(t *testing.T) {
	s := New()
	state := models.NewItemState("u1", "i1", models.ItemTypeVocabulary, testNow)

	first, err := s.Transition(state, Good, testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Transition(first, Good, testNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if second.Stage != models.StageReview {
		t.Errorf("Stage = %q, want review after %d successes", second.Stage, s.PromotionStreak)
	}
	if second.IntervalDays != 6 {
		t.Errorf("IntervalDays = %d, want 6 on promotion with Good", second.IntervalDays)
	}
	if second.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", second.Repetitions)
	}
}

func TestGraduation(t *testing.T) {
	s := New()
	state := reviewState(40, 2500, s.GraduationStreak-1)

	got, err := s.Transition(state, Good, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stage != models.StageGraduated {
		t.Errorf("Stage = %q, want graduated at streak %d interval %d", got.Stage, got.Repetitions, got.IntervalDays)
	}

	// Graduated items keep scheduling, and still fall on Again.
	again, err := s.Transition(got, Again, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if again.Stage != models.StageRelearning {
		t.Errorf("graduated + Again: Stage = %q, want relearning", again.Stage)
	}
}

func TestIntervalCap(t *testing.T) {
	s := New()
	state := reviewState(300, 2500, 10)

	got, err := s.Transition(state, Easy, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntervalDays != s.MaxIntervalDays {
		t.Errorf("IntervalDays = %d, want capped at %d", got.IntervalDays, s.MaxIntervalDays)
	}
}

func TestTransitionPureInput(t *testing.T) {
	s := New()
	state := reviewState(10, 2500, 5)
	before := state

	if _, err := s.Transition(state, Easy, testNow); err != nil {
		t.Fatal(err)
	}
	if state != before {
		t.Error("Transition mutated its input state")
	}
}

func TestTransitionInvalidGrade(t *testing.T) {
	s := New()
	state := reviewState(10, 2500, 5)

	for _, g := range []Grade{-1, 4, 99} {
		if _, err := s.Transition(state, g, testNow); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("grade %d: err = %v, want ErrInvalidGrade", g, err)
		}
	}
}

func TestDeriveGrade(t *testing.T) {
	tests := []struct {
		correct bool
		ms      int64
		want    Grade
	}{
		{false, 1000, Again},
		{false, 0, Again},
		{true, 2000, Easy},
		{true, 5000, Good},
		{true, 20000, Hard},
		{true, 0, Good}, // no timing info
	}
	for _, tt := range tests {
		if got := DeriveGrade(tt.correct, tt.ms); got != tt.want {
			t.Errorf("DeriveGrade(%v, %d) = %v, want %v", tt.correct, tt.ms, got, tt.want)
		}
	}
}

func TestGradeString(t *testing.T) {
	if Good.String() != "Good" {
		t.Errorf("Good.String() = %q", Good.String())
	}
	if Grade(7).String() != "Grade(7)" {
		t.Errorf("Grade(7).String() = %q", Grade(7).String())
	}
}
