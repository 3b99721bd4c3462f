package srs

import (
	"errors"
	"fmt"
)

// ErrInvalidGrade is returned when a grade outside Again..Easy is passed
// to Transition. Check with errors.Is.
var ErrInvalidGrade = errors.New("srs: invalid grade")

// Grade is the learner's performance rating for one review.
type Grade int

const (
	// Again means the answer was wrong; the item is failed.
	Again Grade = iota
	// Hard means correct, but slow or effortful.
	Hard
	// Good means correct with normal effort.
	Good
	// Easy means correct and fast.
	Easy
)

var gradeNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// IsValid reports whether g is a valid grade (Again through Easy).
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

// String returns the name of the grade. For invalid values it returns "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Response-time thresholds for derived grades, in milliseconds.
const (
	fastAnswerMs = 4_000
	slowAnswerMs = 12_000
)

// DeriveGrade converts raw submission data into a grade when the learner
// gave no explicit self-assessment: incorrect answers are Again, fast
// correct answers Easy, ordinary ones Good, slow ones Hard. A missing
// response time counts as ordinary.
func DeriveGrade(correct bool, responseTimeMs int64) Grade {
	if !correct {
		return Again
	}
	switch {
	case responseTimeMs <= 0:
		return Good
	case responseTimeMs < fastAnswerMs:
		return Easy
	case responseTimeMs < slowAnswerMs:
		return Good
	default:
		return Hard
	}
}
