package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/pintrain/pkg/models"
)

// statColumns whitelists the counter fields Increment may touch; the
// column name is interpolated into the query, so it must never come from
// caller input directly.
var statColumns = map[string]string{
	models.StatReviewsCompleted: "reviews_completed",
	models.StatCorrectCount:     "correct_count",
	models.StatTotalCount:       "total_count",
}

// DailyStatsRepository handles the per-user per-day aggregate counters.
// It implements review.StatsStore.
type DailyStatsRepository struct {
	db *sqlx.DB
}

// NewDailyStatsRepository creates a new repository instance.
func NewDailyStatsRepository(db *sqlx.DB) *DailyStatsRepository {
	return &DailyStatsRepository{db: db}
}

// Increment upserts the day's row and adds delta to the named counter.
// The first increment of a day also marks the streak as maintained.
func (r *DailyStatsRepository) Increment(ctx context.Context, userID, date, field string, delta int) error {
	column, ok := statColumns[field]
	if !ok {
		return fmt.Errorf("unknown stats field %q", field)
	}
	query := r.db.Rebind(fmt.Sprintf(`
		INSERT INTO daily_stats (user_id, date, %[1]s, streak_maintained, updated_at)
		VALUES (?, ?, ?, TRUE, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			%[1]s = daily_stats.%[1]s + excluded.%[1]s,
			streak_maintained = TRUE,
			updated_at = excluded.updated_at
	`, column))
	if _, err := r.db.ExecContext(ctx, query, userID, date, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to increment %s: %v", field, err)
	}
	return nil
}

// Get returns the day's counters, or an all-zero row when the user has
// not reviewed yet that day.
func (r *DailyStatsRepository) Get(ctx context.Context, userID, date string) (*models.DailyStats, error) {
	query := r.db.Rebind(`
		SELECT user_id, date, reviews_completed, correct_count, total_count,
		       streak_maintained, updated_at
		FROM daily_stats
		WHERE user_id = ? AND date = ?
	`)
	var stats models.DailyStats
	err := r.db.GetContext(ctx, &stats, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.DailyStats{UserID: userID, Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %v", err)
	}
	return &stats, nil
}

// Streak returns how many consecutive days ending at date have the streak
// flag set, for the dashboard's streak counter.
func (r *DailyStatsRepository) Streak(ctx context.Context, userID, date string) (int, error) {
	query := r.db.Rebind(`
		SELECT date FROM daily_stats
		WHERE user_id = ? AND streak_maintained = TRUE AND date <= ?
		ORDER BY date DESC
	`)
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query, userID, date); err != nil {
		return 0, fmt.Errorf("failed to load streak days: %v", err)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %v", date, err)
	}
	streak := 0
	for _, d := range dates {
		want := day.AddDate(0, 0, -streak).Format("2006-01-02")
		if d != want {
			break
		}
		streak++
	}
	return streak, nil
}
