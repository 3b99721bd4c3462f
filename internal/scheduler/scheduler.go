// Package scheduler runs the background jobs: periodic cache sweeps and
// due-review reminder checks.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Notifier delivers due-review reminders. Delivery (push, email, chat) is
// external to the core; the scheduler only decides who has work waiting.
type Notifier interface {
	SendReminder(userID string, dueCount int) error
}

// UserDue pairs a user with their due-item count.
type UserDue struct {
	UserID   string
	DueCount int
}

// DueCounter reports how many items each user has waiting.
type DueCounter interface {
	CountDueByUser(ctx context.Context, now time.Time) ([]UserDue, error)
}

// Sweeper purges expired entries; the queue cache implements it.
type Sweeper interface {
	Sweep() int
}

// Config bounds when reminders may fire and how often the cache is swept.
type Config struct {
	ReminderStartHour int // inclusive, 0-23
	ReminderEndHour   int // inclusive, 0-23
	SweepInterval     time.Duration
}

// DefaultConfig returns the default scheduling windows.
func DefaultConfig() Config {
	return Config{
		ReminderStartHour: 8,
		ReminderEndHour:   22,
		SweepInterval:     5 * time.Minute,
	}
}

// Scheduler manages scheduled tasks for the application.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	counter   DueCounter
	sweeper   Sweeper
	clock     func() time.Time
	logger    *log.Logger
	cfg       Config
}

// New creates a scheduler instance. A nil clock means time.Now; a nil
// logger means the standard logger.
func New(notifier Notifier, counter DueCounter, sweeper Sweeper,
	clock func() time.Time, logger *log.Logger, cfg Config) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		counter:   counter,
		sweeper:   sweeper,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start begins running all scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(s.cfg.SweepInterval).Do(s.sweepCache)
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepCache() {
	if n := s.sweeper.Sweep(); n > 0 {
		s.logger.Printf("scheduler: swept %d expired cache entries", n)
	}
}

// checkAndSendReminders notifies every user with due items, but only
// inside the configured hours window.
func (s *Scheduler) checkAndSendReminders() {
	now := s.clock()
	hour := now.Hour()
	if hour < s.cfg.ReminderStartHour || hour > s.cfg.ReminderEndHour {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := s.counter.CountDueByUser(ctx, now)
	if err != nil {
		s.logger.Printf("scheduler: failed to count due items: %v", err)
		return
	}
	for _, c := range counts {
		if c.DueCount == 0 {
			continue
		}
		if err := s.notifier.SendReminder(c.UserID, c.DueCount); err != nil {
			s.logger.Printf("scheduler: reminder for user %s failed: %v", c.UserID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	counts, err := s.counter.CountDueByUser(ctx, s.clock())
	if err != nil {
		return err
	}
	for _, c := range counts {
		if c.UserID == userID && c.DueCount > 0 {
			return s.notifier.SendReminder(c.UserID, c.DueCount)
		}
	}
	return nil
}
