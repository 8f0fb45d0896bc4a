package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/duetapp/notify/internal/delivery"
	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/store"
)

const defaultExpiry = 24 * time.Hour

// Skip reasons recorded on notifications that never reach a channel.
const (
	SkipExpired      = "expired"
	SkipUserDisabled = "user_disabled"
)

// FanOutRequest describes one triggered reminder or directly-created event
// to be expanded into per-recipient notifications.
type FanOutRequest struct {
	Recipients     []string
	Type           string
	Category       string
	Title          string
	Body           string
	Priority       model.Priority
	RequiresAction bool
	Data           model.JSONMap
	ExpiresAt      *time.Time
}

// ReminderRequest builds the fan-out request for a triggered reminder. The
// payload carries enough context for the UI to open the right screen.
func ReminderRequest(r *model.Reminder) FanOutRequest {
	return FanOutRequest{
		Recipients:     r.Recipients,
		Type:           model.TypeReminder,
		Category:       r.Category,
		Title:          r.Title,
		Body:           r.Message,
		Priority:       r.Priority,
		RequiresAction: r.RequiresAction,
		Data: model.JSONMap{
			"reminder_id":      r.ID,
			"category":         r.Category,
			"suggested_action": "open_checkin",
		},
	}
}

// Dispatcher fans a triggered reminder or event out into per-recipient
// notifications and performs the first delivery attempt. Fan-out is keyed
// per occurrence: repeating it creates fresh notifications rather than
// corrupting existing ones, which keeps at-least-once triggering safe.
type Dispatcher interface {
	FanOut(ctx context.Context, req FanOutRequest) ([]string, error)
	Deliver(ctx context.Context, n *model.Notification) error
}

type dispatcher struct {
	store   store.Store
	gateway delivery.Gateway
	prefs   PreferenceProvider
	retry   RetryCoordinator
	log     *slog.Logger
	now     func() time.Time
}

// NewDispatcher creates the default dispatcher.
func NewDispatcher(
	st store.Store,
	gateway delivery.Gateway,
	prefs PreferenceProvider,
	retry RetryCoordinator,
	log *slog.Logger,
) Dispatcher {
	return &dispatcher{
		store:   st,
		gateway: gateway,
		prefs:   prefs,
		retry:   retry,
		log:     log,
		now:     time.Now,
	}
}

// FanOut creates one notification per recipient and attempts delivery for
// each, synchronously within this call. Per-recipient failures are isolated;
// the error return is non-nil only when no notification could be created.
func (d *dispatcher) FanOut(ctx context.Context, req FanOutRequest) ([]string, error) {
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("fan-out request has no recipients")
	}

	now := d.now()
	priority := req.Priority.Normalize()
	expiresAt := req.ExpiresAt
	if expiresAt == nil {
		e := now.Add(defaultExpiry)
		expiresAt = &e
	}

	var ids []string
	for _, recipient := range req.Recipients {
		n := &model.Notification{
			ID:             uuid.NewString(),
			RecipientID:    recipient,
			Type:           req.Type,
			Title:          req.Title,
			Body:           req.Body,
			Priority:       priority,
			RequiresAction: req.RequiresAction,
			Data:           req.Data,
			ExpiresAt:      expiresAt,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if n.Data == nil {
			n.Data = model.JSONMap{}
		}
		if req.Category != "" {
			n.Data["category"] = req.Category
		}

		if err := d.store.CreateNotification(ctx, n); err != nil {
			d.log.ErrorContext(ctx, "Failed to create notification",
				slog.String("recipient_id", recipient),
				slog.String("type", req.Type),
				slog.Any("error", err))
			continue
		}
		metrics.FanOuts.WithLabelValues(string(priority)).Inc()
		ids = append(ids, n.ID)

		// Channel errors drive the retry coordinator; they are not surfaced
		// to the fan-out caller.
		if err := d.Deliver(ctx, n); err != nil {
			d.log.ErrorContext(ctx, "First delivery attempt failed",
				slog.String("notification_id", n.ID),
				slog.Any("error", err))
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("fan-out created no notifications for type %s", req.Type)
	}
	return ids, nil
}

// Deliver runs the channel selection and first attempt for one notification.
// Expiry and preference checks precede any gateway call.
func (d *dispatcher) Deliver(ctx context.Context, n *model.Notification) error {
	now := d.now()

	if n.ExpiredAt(now) {
		n.Metadata.SkippedReason = SkipExpired
		return d.store.UpdateNotification(ctx, n)
	}

	disabled, err := d.prefs.TypeDisabled(ctx, n.RecipientID, n.Type)
	if err != nil {
		// Preference backend trouble must not block delivery; fall through
		// as enabled.
		d.log.WarnContext(ctx, "Preference lookup failed",
			slog.String("recipient_id", n.RecipientID),
			slog.Any("error", err))
	}
	if disabled {
		n.Metadata.SkippedReason = SkipUserDisabled
		return d.store.UpdateNotification(ctx, n)
	}

	primaryErr := d.gateway.Send(ctx, delivery.ChannelRealtime, n)
	d.sendSecondary(ctx, n)

	if primaryErr != nil {
		n.Metadata.DeliveryAttempts++
		n.Metadata.LastDeliveryError = primaryErr.Error()
		return d.retry.Start(ctx, n)
	}

	n.Delivered = true
	n.DeliveredAt = &now
	return d.store.UpdateNotification(ctx, n)
}

// sendSecondary attempts the push and email channels where preferences and
// priority call for them. Secondary failures are logged, never retried.
func (d *dispatcher) sendSecondary(ctx context.Context, n *model.Notification) {
	highPriority := n.Priority == model.PriorityHigh || n.Priority == model.PriorityUrgent

	if highPriority || n.RequiresAction {
		if enabled, err := d.prefs.PushEnabled(ctx, n.RecipientID); err == nil && enabled {
			if err := d.gateway.Send(ctx, delivery.ChannelPush, n); err != nil {
				d.log.WarnContext(ctx, "Push delivery failed",
					slog.String("notification_id", n.ID),
					slog.Any("error", err))
			}
		}
	}

	if n.RequiresAction {
		if enabled, err := d.prefs.EmailForActions(ctx, n.RecipientID); err == nil && enabled {
			if err := d.gateway.Send(ctx, delivery.ChannelEmail, n); err != nil {
				d.log.WarnContext(ctx, "Email delivery failed",
					slog.String("notification_id", n.ID),
					slog.Any("error", err))
			}
		}
	}
}
