package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"
)

type recordingNotifier struct {
	sent map[string]int
	err  error
}

func (r *recordingNotifier) SendReminder(userID string, dueCount int) error {
	if r.err != nil {
		return r.err
	}
	if r.sent == nil {
		r.sent = make(map[string]int)
	}
	r.sent[userID] = dueCount
	return nil
}

type staticCounter struct {
	counts []UserDue
	err    error
}

func (s staticCounter) CountDueByUser(ctx context.Context, now time.Time) ([]UserDue, error) {
	return s.counts, s.err
}

type countingSweeper struct{ calls int }

func (c *countingSweeper) Sweep() int {
	c.calls++
	return 3
}

func newTestScheduler(n Notifier, c DueCounter, clock func() time.Time) *Scheduler {
	return New(n, c, &countingSweeper{}, clock, log.New(io.Discard, "", 0), DefaultConfig())
}

func at(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 15, hour, 0, 0, 0, time.UTC)
	}
}

func TestRemindersInsideWindow(t *testing.T) {
	notifier := &recordingNotifier{}
	counter := staticCounter{counts: []UserDue{
		{UserID: "u1", DueCount: 7},
		{UserID: "u2", DueCount: 0},
	}}
	s := newTestScheduler(notifier, counter, at(10))

	s.checkAndSendReminders()

	if got := notifier.sent["u1"]; got != 7 {
		t.Errorf("u1 reminded with %d, want 7", got)
	}
	if _, ok := notifier.sent["u2"]; ok {
		t.Error("u2 reminded despite zero due items")
	}
}

func TestRemindersOutsideWindow(t *testing.T) {
	notifier := &recordingNotifier{}
	counter := staticCounter{counts: []UserDue{{UserID: "u1", DueCount: 7}}}
	s := newTestScheduler(notifier, counter, at(3))

	s.checkAndSendReminders()

	if len(notifier.sent) != 0 {
		t.Errorf("reminders sent at 03:00, outside the window: %v", notifier.sent)
	}
}

func TestReminderFailureDoesNotStopOthers(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("unreachable")}
	counter := staticCounter{counts: []UserDue{{UserID: "u1", DueCount: 1}}}
	s := newTestScheduler(notifier, counter, at(10))

	// Must not panic or propagate; failures are logged only.
	s.checkAndSendReminders()
}

func TestRunManualCheck(t *testing.T) {
	notifier := &recordingNotifier{}
	counter := staticCounter{counts: []UserDue{
		{UserID: "u1", DueCount: 4},
		{UserID: "u2", DueCount: 2},
	}}
	s := newTestScheduler(notifier, counter, at(10))

	if err := s.RunManualCheck(context.Background(), "u2"); err != nil {
		t.Fatal(err)
	}
	if got := notifier.sent["u2"]; got != 2 {
		t.Errorf("u2 reminded with %d, want 2", got)
	}
	if _, ok := notifier.sent["u1"]; ok {
		t.Error("manual check notified the wrong user")
	}
}
