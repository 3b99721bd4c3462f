package api

import (
	"github.com/example/pintrain/internal/srs"
	"github.com/example/pintrain/pkg/models"
)

// SubmitReviewRequest is the JSON body of POST /api/v1/reviews.
type SubmitReviewRequest struct {
	ItemID         string `json:"item_id" binding:"required"`
	ItemType       string `json:"item_type" binding:"required"`
	UserAnswer     string `json:"user_answer"`
	CorrectAnswer  string `json:"correct_answer" binding:"required"`
	Grade          *int   `json:"grade"` // 0-3; omitted means derive from timing
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// SubmitReviewResponse reports the submission outcome.
type SubmitReviewResponse struct {
	IsCorrect    bool             `json:"is_correct"`
	Grade        string           `json:"grade"`
	UpdatedState models.ItemState `json:"updated_state"`
}

// QueueResponse is the payload of GET /api/v1/queue.
type QueueResponse struct {
	Items []models.ItemState `json:"items"`
	Count int                `json:"count"`
}

// StartLessonResponse reports how many items a lesson start added.
type StartLessonResponse struct {
	ItemsAdded int `json:"items_added"`
}

func gradePtr(g *int) *srs.Grade {
	if g == nil {
		return nil
	}
	grade := srs.Grade(*g)
	return &grade
}
