package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/pintrain/internal/review"
	"github.com/example/pintrain/pkg/models"
)

// ItemStateRepository handles database operations for per-user item
// scheduling state. It implements review.ItemStore.
type ItemStateRepository struct {
	db *sqlx.DB
}

// NewItemStateRepository creates a new repository instance.
func NewItemStateRepository(db *sqlx.DB) *ItemStateRepository {
	return &ItemStateRepository{db: db}
}

// Get returns the state for a specific user and item.
func (r *ItemStateRepository) Get(ctx context.Context, userID, itemID string, itemType models.ItemType) (*models.ItemState, error) {
	query := r.db.Rebind(`
		SELECT user_id, item_id, item_type, stage, ease_factor, interval_days,
		       repetitions, next_review_date, created_at, updated_at
		FROM item_states
		WHERE user_id = ? AND item_id = ? AND item_type = ?
	`)
	var state models.ItemState
	err := r.db.GetContext(ctx, &state, query, userID, itemID, string(itemType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s item %s", review.ErrItemNotFound, userID, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item state: %v", err)
	}
	return &state, nil
}

// Update persists a new state for the row, guarded by a compare-and-swap
// on the previous updated_at so a stale read never overwrites a newer
// write. Losing the swap returns review.ErrConflict.
func (r *ItemStateRepository) Update(ctx context.Context, state *models.ItemState, expectedUpdatedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE item_states SET
			stage = ?,
			ease_factor = ?,
			interval_days = ?,
			repetitions = ?,
			next_review_date = ?,
			updated_at = ?
		WHERE user_id = ? AND item_id = ? AND item_type = ? AND updated_at = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		string(state.Stage),
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.NextReviewDate,
		state.UpdatedAt,
		state.UserID,
		state.ItemID,
		string(state.ItemType),
		expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update item state: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		// Distinguish a lost race from a missing row.
		if _, getErr := r.Get(ctx, state.UserID, state.ItemID, state.ItemType); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: item %s", review.ErrConflict, state.ItemID)
	}
	return nil
}

// CreateBatch inserts new states inside one transaction, skipping pairs
// the user already has, and returns how many rows were created.
func (r *ItemStateRepository) CreateBatch(ctx context.Context, states []models.ItemState) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`
		INSERT INTO item_states (
			user_id, item_id, item_type, stage, ease_factor, interval_days,
			repetitions, next_review_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id, item_type) DO NOTHING
	`)

	created := 0
	for _, s := range states {
		result, err := tx.ExecContext(ctx, query,
			s.UserID, s.ItemID, string(s.ItemType), string(s.Stage),
			s.EaseFactor, s.IntervalDays, s.Repetitions,
			s.NextReviewDate, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create item state: %v", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %v", err)
		}
		created += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit item states: %v", err)
	}
	return created, nil
}

// ListDue returns items due at now, most overdue first with item_id as
// the deterministic tiebreaker.
func (r *ItemStateRepository) ListDue(ctx context.Context, userID string, limit int, now time.Time) ([]models.ItemState, error) {
	query := r.db.Rebind(`
		SELECT user_id, item_id, item_type, stage, ease_factor, interval_days,
		       repetitions, next_review_date, created_at, updated_at
		FROM item_states
		WHERE user_id = ? AND next_review_date <= ?
		ORDER BY next_review_date ASC, item_id ASC
		LIMIT ?
	`)
	states := []models.ItemState{}
	if err := r.db.SelectContext(ctx, &states, query, userID, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list due items: %v", err)
	}
	return states, nil
}

// UserDueCount pairs a user with their number of due items.
type UserDueCount struct {
	UserID   string `db:"user_id"`
	DueCount int    `db:"due_count"`
}

// CountDueByUser returns due-item counts for every user with at least one
// due item. The reminder scheduler drives this.
func (r *ItemStateRepository) CountDueByUser(ctx context.Context, now time.Time) ([]UserDueCount, error) {
	query := r.db.Rebind(`
		SELECT user_id, COUNT(*) AS due_count
		FROM item_states
		WHERE next_review_date <= ?
		GROUP BY user_id
	`)
	counts := []UserDueCount{}
	if err := r.db.SelectContext(ctx, &counts, query, now); err != nil {
		return nil, fmt.Errorf("failed to count due items: %v", err)
	}
	return counts, nil
}
