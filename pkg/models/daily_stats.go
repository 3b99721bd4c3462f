package models

import "time"

// Counter fields accepted by the daily stats increment operation.
const (
	StatReviewsCompleted = "reviews_completed"
	StatCorrectCount     = "correct_count"
	StatTotalCount       = "total_count"
)

// DailyStats aggregates one user's review activity for a single UTC day.
// CorrectCount/TotalCount form the accuracy ratio for dashboard charts.
type DailyStats struct {
	UserID           string    `json:"user_id" db:"user_id"`
	Date             string    `json:"date" db:"date"` // YYYY-MM-DD, UTC
	ReviewsCompleted int       `json:"reviews_completed" db:"reviews_completed"`
	CorrectCount     int       `json:"correct_count" db:"correct_count"`
	TotalCount       int       `json:"total_count" db:"total_count"`
	StreakMaintained bool      `json:"streak_maintained" db:"streak_maintained"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
