package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/recurrence"
	"github.com/duetapp/notify/internal/store"
)

// Scheduler finds due reminders, triggers fan-out and re-derives the next
// occurrence for recurring reminders. One ProcessDue pass is an independent
// unit of work; a failed pass leaves state untouched for the next one.
type Scheduler struct {
	store       store.Store
	dispatcher  Dispatcher
	calc        *recurrence.Calculator
	halfWindow  time.Duration
	interval    time.Duration
	workerLimit int
	log         *slog.Logger
	now         func() time.Time
}

// NewScheduler creates the reminder scheduler.
func NewScheduler(
	st store.Store,
	dispatcher Dispatcher,
	calc *recurrence.Calculator,
	halfWindow time.Duration,
	interval time.Duration,
	workerLimit int,
	log *slog.Logger,
) *Scheduler {
	if calc == nil {
		calc = &recurrence.Calculator{}
	}
	return &Scheduler{
		store:       st,
		dispatcher:  dispatcher,
		calc:        calc,
		halfWindow:  halfWindow,
		interval:    interval,
		workerLimit: workerLimit,
		log:         log,
		now:         time.Now,
	}
}

// InWindow reports whether target falls inside [now-halfWindow, now+halfWindow].
func InWindow(target, now time.Time, halfWindow time.Duration) bool {
	return !target.Before(now.Add(-halfWindow)) && !target.After(now.Add(halfWindow))
}

// Start drives periodic ProcessDue passes until the context ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.InfoContext(ctx, "Starting reminder scheduler",
		slog.Duration("interval", s.interval),
		slog.Duration("half_window", s.halfWindow))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "Reminder scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ProcessDue(ctx, s.now()); err != nil {
				s.log.Error("Error processing due reminders", slog.Any("error", err))
			}
		}
	}
}

// ProcessDue triggers every reminder due at now and returns the ids that
// fired. Urgent reminders are dispatched before the rest of the pass; within
// a partition reminders run concurrently under the worker limit.
func (s *Scheduler) ProcessDue(ctx context.Context, now time.Time) ([]string, error) {
	reminders, err := s.store.FindDueReminders(ctx, now, s.halfWindow)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, nil
	}

	var urgent, rest []model.Reminder
	for _, r := range reminders {
		if !InWindow(r.EffectiveTarget(), now, s.halfWindow) {
			continue
		}
		if r.Priority == model.PriorityUrgent {
			urgent = append(urgent, r)
		} else {
			rest = append(rest, r)
		}
	}

	s.log.InfoContext(ctx, "Processing due reminders",
		slog.Int("urgent", len(urgent)),
		slog.Int("normal", len(rest)))

	var triggered []string
	triggered = append(triggered, s.processBatch(ctx, now, urgent)...)
	triggered = append(triggered, s.processBatch(ctx, now, rest)...)
	return triggered, nil
}

// processBatch runs one priority partition to completion. Per-reminder
// failures are logged with their identity and never abort the batch.
func (s *Scheduler) processBatch(ctx context.Context, now time.Time, reminders []model.Reminder) []string {
	if len(reminders) == 0 {
		return nil
	}

	var mu sync.Mutex
	var triggered []string

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.workerLimit)

	for _, reminder := range reminders {
		reminder := reminder
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			fired, err := s.process(ctx, now, &reminder)
			if err != nil {
				s.log.Error("Reminder trigger failed",
					slog.String("reminder_id", reminder.ID),
					slog.Any("error", err))
				return nil
			}
			if fired {
				mu.Lock()
				triggered = append(triggered, reminder.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()
	return triggered
}

// process claims and triggers a single reminder. The claim is a conditional
// update on last_triggered_at, so a concurrent pass working the same due
// window loses the claim and skips the reminder.
func (s *Scheduler) process(ctx context.Context, now time.Time, r *model.Reminder) (bool, error) {
	claimed, err := s.store.ClaimReminder(ctx, r.ID, r.LastTriggeredAt, now)
	if err != nil {
		return false, err
	}
	if !claimed {
		s.log.DebugContext(ctx, "Reminder already claimed",
			slog.String("reminder_id", r.ID))
		return false, nil
	}

	metrics.RemindersTriggered.WithLabelValues(string(r.Frequency)).Inc()

	if _, err := s.dispatcher.FanOut(ctx, ReminderRequest(r)); err != nil {
		// The occurrence is claimed; losing the fan-out is logged rather
		// than re-fired, matching the window-as-timeout semantics.
		s.log.Error("Fan-out failed for claimed reminder",
			slog.String("reminder_id", r.ID),
			slog.Any("error", err))
	}

	if !r.Recurring() {
		return true, s.store.SaveReminderSchedule(ctx, r.ID, nil, false)
	}

	next, ok, err := s.calc.Next(r.Frequency, r.Schedule(), now)
	if err != nil {
		// Malformed schedule: skip rescheduling and deactivate so the
		// reminder cannot re-fire every pass.
		s.log.Error("Invalid reminder schedule",
			slog.String("reminder_id", r.ID),
			slog.Any("error", err))
		return true, s.store.SaveReminderSchedule(ctx, r.ID, nil, false)
	}
	if !ok {
		return true, s.store.SaveReminderSchedule(ctx, r.ID, nil, false)
	}
	return true, s.store.SaveReminderSchedule(ctx, r.ID, &next, true)
}
