package models

import "time"

// Item is a piece of learnable content: a radical, character, or
// vocabulary entry with its expected pinyin reading.
type Item struct {
	ID        string    `json:"id" db:"id"`
	ItemType  ItemType  `json:"item_type" db:"item_type"`
	Hanzi     string    `json:"hanzi" db:"hanzi"`
	Pinyin    string    `json:"pinyin" db:"pinyin"`
	Meaning   string    `json:"meaning" db:"meaning"`
	LessonID  string    `json:"lesson_id" db:"lesson_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
