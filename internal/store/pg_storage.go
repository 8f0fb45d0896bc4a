package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/duetapp/notify/internal/errors"
	"github.com/duetapp/notify/internal/model"
)

const reminderColumns = `id, couple_id, title, message, category, frequency,
	scheduled_for, next_occurrence, last_triggered_at, trigger_count,
	is_active, is_snoozed, snooze_until, custom_schedule, priority,
	recipients, requires_action, created_at, updated_at`

const notificationColumns = `id, recipient_id, type, title, body, priority,
	requires_action, data, expires_at, delivered, delivered_at, failed,
	failed_at, metadata, created_at, updated_at`

type postgresStorage struct {
	db *sqlx.DB
}

// NewPostgresStorage wraps an open connection pool.
func NewPostgresStorage(db *sqlx.DB) Store {
	return &postgresStorage{db: db}
}

func (s *postgresStorage) FindDueReminders(ctx context.Context, now time.Time, halfWindow time.Duration) ([]model.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE is_active = TRUE
		  AND (is_snoozed = FALSE OR (snooze_until IS NOT NULL AND snooze_until <= $1))
		  AND COALESCE(next_occurrence, scheduled_for) BETWEEN $2 AND $3
		ORDER BY COALESCE(next_occurrence, scheduled_for) ASC`

	var reminders []model.Reminder
	err := s.db.SelectContext(ctx, &reminders, query, now, now.Add(-halfWindow), now.Add(halfWindow))
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	return reminders, nil
}

// ClaimReminder is a compare-and-set on last_triggered_at. A concurrent pass
// that already triggered this occurrence will have moved last_triggered_at,
// so the second caller's update matches no rows. The claim also clears any
// lapsed snooze.
func (s *postgresStorage) ClaimReminder(ctx context.Context, id string, lastTriggeredAt *time.Time, now time.Time) (bool, error) {
	query := `UPDATE reminders
		SET last_triggered_at = $2,
		    trigger_count = trigger_count + 1,
		    is_snoozed = FALSE,
		    snooze_until = NULL,
		    updated_at = $2
		WHERE id = $1 AND last_triggered_at IS NOT DISTINCT FROM $3`

	res, err := s.db.ExecContext(ctx, query, id, now, lastTriggeredAt)
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: rows affected: %w", id, err)
	}
	return rows == 1, nil
}

func (s *postgresStorage) SaveReminderSchedule(ctx context.Context, id string, next *time.Time, active bool) error {
	query := `UPDATE reminders
		SET next_occurrence = $2, is_active = $3, updated_at = $4
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, next, active, time.Now())
	if err != nil {
		return fmt.Errorf("save reminder schedule %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save reminder schedule %s: rows affected: %w", id, err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("reminder %s", id)
	}
	return nil
}

func (s *postgresStorage) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	query := `INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :recipient_id, :type, :title, :body, :priority,
		        :requires_action, :data, :expires_at, :delivered, :delivered_at,
		        :failed, :failed_at, :metadata, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification for %s: %w", n.RecipientID, err)
	}
	return nil
}

func (s *postgresStorage) UpdateNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	n.UpdatedAt = time.Now()
	query := `UPDATE notifications
		SET delivered = :delivered, delivered_at = :delivered_at,
		    failed = :failed, failed_at = :failed_at,
		    metadata = :metadata, updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("update notification %s: %w", n.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification %s: rows affected: %w", n.ID, err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("notification %s", n.ID)
	}
	return nil
}

func (s *postgresStorage) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n model.Notification
	err := s.db.GetContext(ctx, &n, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification %s", id)
		}
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}
	return &n, nil
}

func (s *postgresStorage) FindDueRetries(ctx context.Context, now time.Time) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE delivered = FALSE AND failed = FALSE
		  AND metadata ->> 'next_retry_at' IS NOT NULL
		  AND (metadata ->> 'next_retry_at')::timestamptz <= $1
		ORDER BY metadata ->> 'next_retry_at' ASC`

	var notifs []model.Notification
	if err := s.db.SelectContext(ctx, &notifs, query, now); err != nil {
		return nil, fmt.Errorf("find due retries: %w", err)
	}
	return notifs, nil
}

// CreateMilestoneIfAbsent relies on the unique constraint on
// (couple_id, milestone_key); a conflicting insert affects zero rows and is
// reported as created=false, which keeps detection idempotent under
// concurrent runs.
func (s *postgresStorage) CreateMilestoneIfAbsent(ctx context.Context, m *model.Milestone) (bool, error) {
	if m == nil {
		return false, fmt.Errorf("milestone cannot be nil")
	}
	query := `INSERT INTO milestones
		(id, couple_id, category, milestone_key, title, description, achieved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (couple_id, milestone_key) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		m.ID, m.CoupleID, m.Category, m.Key, m.Title, m.Description, m.AchievedAt)
	if err != nil {
		return false, fmt.Errorf("create milestone %s/%s: %w", m.CoupleID, m.Key, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create milestone %s/%s: rows affected: %w", m.CoupleID, m.Key, err)
	}
	return rows == 1, nil
}

func (s *postgresStorage) CountMilestonesSince(ctx context.Context, coupleID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM milestones WHERE couple_id = $1 AND achieved_at >= $2`

	var count int
	if err := s.db.GetContext(ctx, &count, query, coupleID, since); err != nil {
		return 0, fmt.Errorf("count milestones for %s: %w", coupleID, err)
	}
	return count, nil
}

func (s *postgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
