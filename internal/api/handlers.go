// Package api exposes the review engine over HTTP. Auth happens upstream;
// requests arrive with an opaque user identifier in the X-User-ID header.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/pintrain/internal/review"
	"github.com/example/pintrain/internal/srs"
	"github.com/example/pintrain/pkg/models"
)

// Handler serves the review endpoints.
type Handler struct {
	engine *review.Engine
}

// NewHandler creates a handler around the engine.
func NewHandler(engine *review.Engine) *Handler {
	return &Handler{engine: engine}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	v1 := r.Group("/api/v1", requireUser)
	v1.GET("/queue", h.handleGetQueue)
	v1.POST("/reviews", h.handleSubmitReview)
	v1.POST("/lessons/:id/start", h.handleStartLesson)
	v1.GET("/stats/today", h.handleTodayStats)

	return r
}

// requireUser pulls the opaque user identifier the auth layer injected.
func requireUser(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}
	c.Set("userID", userID)
	c.Next()
}

func currentUser(c *gin.Context) string {
	return c.GetString("userID")
}

func (h *Handler) handleGetQueue(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	result, err := h.engine.GetQueue(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, QueueResponse{Items: result.Items, Count: result.Count})
}

func (h *Handler) handleSubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.SubmitReview(c.Request.Context(), review.SubmitRequest{
		UserID:         currentUser(c),
		ItemID:         req.ItemID,
		ItemType:       models.ItemType(req.ItemType),
		UserAnswer:     req.UserAnswer,
		CorrectAnswer:  req.CorrectAnswer,
		Grade:          gradePtr(req.Grade),
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SubmitReviewResponse{
		IsCorrect:    result.IsCorrect,
		Grade:        result.Grade.String(),
		UpdatedState: result.State,
	})
}

func (h *Handler) handleStartLesson(c *gin.Context) {
	created, err := h.engine.StartLesson(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StartLessonResponse{ItemsAdded: created})
}

func (h *Handler) handleTodayStats(c *gin.Context) {
	stats, err := h.engine.TodayStats(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// writeError maps engine errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, review.ErrInvalidLimit),
		errors.Is(err, review.ErrInvalidIdentifier),
		errors.Is(err, srs.ErrInvalidGrade):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, review.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
