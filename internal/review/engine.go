// Package review orchestrates the submission pipeline and the cached
// due-queue read path around the SRS transition function.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/pintrain/internal/cache"
	"github.com/example/pintrain/internal/srs"
	"github.com/example/pintrain/pkg/models"
)

// ItemStore is the external persistence collaborator for item states.
type ItemStore interface {
	// Get returns the state for (user, item), or ErrItemNotFound.
	Get(ctx context.Context, userID, itemID string, itemType models.ItemType) (*models.ItemState, error)
	// Update persists state only if the stored row still carries
	// expectedUpdatedAt; a mismatch returns ErrConflict.
	Update(ctx context.Context, state *models.ItemState, expectedUpdatedAt time.Time) error
	// CreateBatch inserts new states, skipping pairs that already exist.
	CreateBatch(ctx context.Context, states []models.ItemState) (int, error)
	// ListDue returns states due at now, ordered by next review date
	// ascending with item ID as the tiebreaker.
	ListDue(ctx context.Context, userID string, limit int, now time.Time) ([]models.ItemState, error)
}

// LessonStore supplies the items a lesson adds to the learner's set.
type LessonStore interface {
	ListLessonItems(ctx context.Context, lessonID string) ([]models.Item, error)
}

// Comparer is the external answer-comparison collaborator.
type Comparer interface {
	Compare(userAnswer, correctAnswer string) bool
}

// StatsStore is the aggregate stats collaborator. Increments are
// best-effort per call; failures never abort a submission.
type StatsStore interface {
	Increment(ctx context.Context, userID, date, field string, delta int) error
	Get(ctx context.Context, userID, date string) (*models.DailyStats, error)
}

// Config tunes the engine's read path.
type Config struct {
	QueueTTL     time.Duration // cache TTL for queue and stats reads
	DefaultLimit int           // used when the caller passes limit 0
	MaxLimit     int           // larger requests are clamped to this
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		QueueTTL:     60 * time.Second,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// Engine wires the collaborators together. Construct with New; the zero
// value is not usable.
type Engine struct {
	store    ItemStore
	lessons  LessonStore
	stats    StatsStore
	comparer Comparer
	cache    *cache.Cache
	srs      *srs.Scheduler
	clock    cache.Clock
	logger   *log.Logger
	cfg      Config
}

// New creates an engine. A nil clock means time.Now and a nil logger means
// the standard logger; everything else is required.
func New(store ItemStore, lessons LessonStore, stats StatsStore, comparer Comparer,
	queueCache *cache.Cache, scheduler *srs.Scheduler, clock cache.Clock,
	logger *log.Logger, cfg Config) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:    store,
		lessons:  lessons,
		stats:    stats,
		comparer: comparer,
		cache:    queueCache,
		srs:      scheduler,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

// QueueResult is the cached due-queue payload.
type QueueResult struct {
	Items []models.ItemState `json:"items"`
	Count int                `json:"count"`
}

// GetQueue returns up to limit items due now for the user, served through
// the queue cache. A zero limit uses the default; limits above the maximum
// are clamped; negative limits are rejected before any I/O.
func (e *Engine) GetQueue(ctx context.Context, userID string, limit int) (*QueueResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidIdentifier)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	key := queueKey(userID, limit)
	v, err := e.cache.GetOrLoad(ctx, key, e.cfg.QueueTTL, func(ctx context.Context) (any, error) {
		var items []models.ItemState
		err := e.retryRead(ctx, func() error {
			var err error
			items, err = e.store.ListDue(ctx, userID, limit, e.clock())
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return &QueueResult{Items: items, Count: len(items)}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*QueueResult), nil
}

// SubmitRequest carries one answered card.
type SubmitRequest struct {
	UserID         string
	ItemID         string
	ItemType       models.ItemType
	UserAnswer     string
	CorrectAnswer  string
	Grade          *srs.Grade // nil derives the grade from correctness and timing
	ResponseTimeMs int64
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	IsCorrect bool             `json:"is_correct"`
	Grade     srs.Grade        `json:"grade"`
	State     models.ItemState `json:"updated_state"`
}

// SubmitReview runs the submission pipeline: load state, compare the
// answer, run the transition, persist with a compare-and-swap, invalidate
// the user's cached reads, and bump daily stats. A store failure aborts
// with no partial progress recorded; cache and stats failures are logged
// and swallowed.
func (e *Engine) SubmitReview(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.UserID == "" || req.ItemID == "" {
		return nil, fmt.Errorf("%w: user and item ids are required", ErrInvalidIdentifier)
	}
	if !req.ItemType.IsValid() {
		return nil, fmt.Errorf("%w: item type %q", ErrInvalidIdentifier, req.ItemType)
	}
	if req.Grade != nil && !req.Grade.IsValid() {
		return nil, fmt.Errorf("%w: %d", srs.ErrInvalidGrade, int(*req.Grade))
	}

	state, err := e.store.Get(ctx, req.UserID, req.ItemID, req.ItemType)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	correct := e.comparer.Compare(req.UserAnswer, req.CorrectAnswer)

	grade := srs.DeriveGrade(correct, req.ResponseTimeMs)
	if req.Grade != nil {
		grade = *req.Grade
	}

	now := e.clock()
	next, err := e.srs.Transition(*state, grade, now)
	if err != nil {
		return nil, err
	}

	// The CAS on the previous UpdatedAt serializes racing submissions for
	// the same (user, item); a stale read can never clobber a newer write.
	if err := e.store.Update(ctx, &next, state.UpdatedAt); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.invalidateUser(req.UserID)
	e.recordStats(ctx, req.UserID, now, correct)

	return &SubmitResult{IsCorrect: correct, Grade: grade, State: next}, nil
}

// StartLesson creates fresh, immediately-due states for every item in the
// lesson and returns how many were added. Items the user already has are
// left untouched.
func (e *Engine) StartLesson(ctx context.Context, userID, lessonID string) (int, error) {
	if userID == "" || lessonID == "" {
		return 0, fmt.Errorf("%w: user and lesson ids are required", ErrInvalidIdentifier)
	}

	items, err := e.lessons.ListLessonItems(ctx, lessonID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrLessonNotFound, lessonID)
	}

	now := e.clock()
	states := make([]models.ItemState, 0, len(items))
	for _, it := range items {
		states = append(states, models.NewItemState(userID, it.ID, it.ItemType, now))
	}
	created, err := e.store.CreateBatch(ctx, states)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.invalidateUser(userID)
	return created, nil
}

// TodayStats returns the user's aggregate counters for the current UTC
// day, served through the cache under its own key prefix.
func (e *Engine) TodayStats(ctx context.Context, userID string) (*models.DailyStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidIdentifier)
	}

	date := statDate(e.clock())
	key := statsKey(userID, date)
	v, err := e.cache.GetOrLoad(ctx, key, e.cfg.QueueTTL, func(ctx context.Context) (any, error) {
		var stats *models.DailyStats
		err := e.retryRead(ctx, func() error {
			var err error
			stats, err = e.stats.Get(ctx, userID, date)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyStats), nil
}

// invalidateUser drops every cached queue variant and the stats entry for
// the user. Correctness never depends on this; a miss here only means a
// stale read for the remainder of the TTL window.
func (e *Engine) invalidateUser(userID string) {
	e.cache.InvalidatePrefix("queue:" + userID + ":")
	e.cache.InvalidatePrefix("stats:" + userID + ":")
}

// recordStats bumps the day's counters. Errors are logged, never returned:
// a recorded review must not fail because a counter write did.
func (e *Engine) recordStats(ctx context.Context, userID string, now time.Time, correct bool) {
	date := statDate(now)
	increments := []struct {
		field string
		delta int
	}{
		{models.StatReviewsCompleted, 1},
		{models.StatTotalCount, 1},
	}
	if correct {
		increments = append(increments, struct {
			field string
			delta int
		}{models.StatCorrectCount, 1})
	}
	for _, inc := range increments {
		if err := e.stats.Increment(ctx, userID, date, inc.field, inc.delta); err != nil {
			e.logger.Printf("review: stats update %s for user %s failed: %v", inc.field, userID, err)
		}
	}
}

// retryRead runs fn with one bounded-backoff retry. Only the read path
// retries; the submission write surfaces its first failure so the caller
// can decide.
func (e *Engine) retryRead(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return err
	case <-time.After(100 * time.Millisecond):
	}
	return fn()
}

func statDate(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func queueKey(userID string, limit int) string {
	return fmt.Sprintf("queue:%s:%d", userID, limit)
}

func statsKey(userID, date string) string {
	return fmt.Sprintf("stats:%s:%s", userID, date)
}
