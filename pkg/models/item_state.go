package models

import "time"

// ItemType identifies the kind of content an item carries.
type ItemType string

const (
	ItemTypeRadical    ItemType = "radical"
	ItemTypeCharacter  ItemType = "character"
	ItemTypeVocabulary ItemType = "vocabulary"
)

// IsValid reports whether t is one of the known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRadical, ItemTypeCharacter, ItemTypeVocabulary:
		return true
	}
	return false
}

// Stage is the coarse-grained bucket describing how established an item
// is in the learner's long-term memory.
type Stage string

const (
	StageNew        Stage = "new"
	StageLearning   Stage = "learning"
	StageReview     Stage = "review"
	StageRelearning Stage = "relearning"
	StageGraduated  Stage = "graduated"
)

// IsValid reports whether s is one of the known stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageNew, StageLearning, StageReview, StageRelearning, StageGraduated:
		return true
	}
	return false
}

// Ease factors are stored as fixed-point integers scaled by EaseScale so
// repeated arithmetic stays deterministic across platforms.
const (
	EaseScale         = 1000
	DefaultEaseFactor = 2500 // 2.5
	MinEaseFactor     = 1300 // 1.3, intervals never collapse below this multiplier
)

// ItemState tracks one user's scheduling state for a single item.
type ItemState struct {
	UserID         string    `json:"user_id" db:"user_id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	ItemType       ItemType  `json:"item_type" db:"item_type"`
	Stage          Stage     `json:"stage" db:"stage"`
	EaseFactor     int       `json:"ease_factor" db:"ease_factor"` // fixed-point, ×EaseScale
	IntervalDays   int       `json:"interval_days" db:"interval_days"`
	Repetitions    int       `json:"repetitions" db:"repetitions"` // consecutive non-Again reviews
	NextReviewDate time.Time `json:"next_review_date" db:"next_review_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewItemState returns the state a freshly learned item starts with:
// due immediately, default ease, no progress.
func NewItemState(userID, itemID string, itemType ItemType, now time.Time) ItemState {
	return ItemState{
		UserID:         userID,
		ItemID:         itemID,
		ItemType:       itemType,
		Stage:          StageNew,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   0,
		Repetitions:    0,
		NextReviewDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsDue reports whether the item should be shown at the given instant.
func (s *ItemState) IsDue(now time.Time) bool {
	return !s.NextReviewDate.After(now)
}
