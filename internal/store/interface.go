package store

import (
	"context"
	"time"

	"github.com/duetapp/notify/internal/model"
)

// Store defines the persistence operations the pipeline needs. All mutation
// paths go through atomic update/insert statements; the pipeline never does
// read-modify-write on shared records in application memory.
type Store interface {
	// FindDueReminders returns active, non-snoozed reminders whose effective
	// target falls inside [now-halfWindow, now+halfWindow].
	FindDueReminders(ctx context.Context, now time.Time, halfWindow time.Duration) ([]model.Reminder, error)
	// ClaimReminder marks a reminder as triggered, guarded by a compare-and-
	// set on last_triggered_at so concurrent scheduler passes cannot both
	// fire the same occurrence. It reports whether this caller won the claim.
	ClaimReminder(ctx context.Context, id string, lastTriggeredAt *time.Time, now time.Time) (bool, error)
	// SaveReminderSchedule persists the recomputed next occurrence, or
	// deactivates the reminder when next is nil and active is false.
	SaveReminderSchedule(ctx context.Context, id string, next *time.Time, active bool) error

	CreateNotification(ctx context.Context, n *model.Notification) error
	UpdateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	// FindDueRetries returns non-terminal notifications whose next retry
	// instant has passed.
	FindDueRetries(ctx context.Context, now time.Time) ([]model.Notification, error)

	// CreateMilestoneIfAbsent inserts the milestone unless one already
	// exists for (couple_id, milestone_key). It reports whether a row was
	// created; a rejected insert is not an error.
	CreateMilestoneIfAbsent(ctx context.Context, m *model.Milestone) (bool, error)
	CountMilestonesSince(ctx context.Context, coupleID string, since time.Time) (int, error)

	Ping(ctx context.Context) error
}
