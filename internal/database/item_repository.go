package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/pintrain/pkg/models"
)

// ItemRepository handles database operations for learnable content.
// Its ListLessonItems method implements review.LessonStore.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByHanzi looks an item up by its content identity within a lesson.
// Returns nil without error when no such item exists.
func (r *ItemRepository) GetByHanzi(ctx context.Context, hanzi string, itemType models.ItemType, lessonID string) (*models.Item, error) {
	query := r.db.Rebind(`
		SELECT id, item_type, hanzi, pinyin, meaning, lesson_id, created_at
		FROM items
		WHERE hanzi = ? AND item_type = ? AND lesson_id = ?
	`)
	var item models.Item
	err := r.db.GetContext(ctx, &item, query, hanzi, string(itemType), lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %v", err)
	}
	return &item, nil
}

// Create inserts a new item.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := r.db.Rebind(`
		INSERT INTO items (id, item_type, hanzi, pinyin, meaning, lesson_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		item.ID, string(item.ItemType), item.Hanzi, item.Pinyin,
		item.Meaning, item.LessonID, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %v", err)
	}
	return nil
}

// Update rewrites an item's reading and meaning.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := r.db.Rebind(`
		UPDATE items SET pinyin = ?, meaning = ? WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query, item.Pinyin, item.Meaning, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %s not found", item.ID)
	}
	return nil
}

// ListLessonItems returns the items a lesson adds to the learner's set.
func (r *ItemRepository) ListLessonItems(ctx context.Context, lessonID string) ([]models.Item, error) {
	query := r.db.Rebind(`
		SELECT id, item_type, hanzi, pinyin, meaning, lesson_id, created_at
		FROM items
		WHERE lesson_id = ?
		ORDER BY created_at ASC, id ASC
	`)
	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, lessonID); err != nil {
		return nil, fmt.Errorf("failed to list lesson items: %v", err)
	}
	return items, nil
}
