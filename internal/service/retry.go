package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duetapp/notify/internal/delivery"
	apperrors "github.com/duetapp/notify/internal/errors"
	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/store"
)

// retryBackoff is the fixed delay table between successive retry attempts;
// attempts past the table length reuse the last delay.
var retryBackoff = []time.Duration{5 * time.Second, 30 * time.Second, 2 * time.Minute}

// maxRetryAttempts bounds retries after the initial dispatch failure.
const maxRetryAttempts = 3

// RetryCoordinator owns the backoff policy for failed deliveries. A retry is
// never a blocking wait: the next attempt instant is persisted on the
// notification and an independent ticker pass picks up due attempts.
type RetryCoordinator interface {
	// Start schedules the first retry after the initial dispatch failure.
	Start(ctx context.Context, n *model.Notification) error
	// Retry performs one due re-attempt.
	Retry(ctx context.Context, n *model.Notification) error
	// Run drives the periodic due-retry pass until the context ends.
	Run(ctx context.Context) error
}

type retryCoordinator struct {
	store       store.Store
	gateway     delivery.Gateway
	alerts      AlertSink
	interval    time.Duration
	workerLimit int
	log         *slog.Logger
	now         func() time.Time
}

// NewRetryCoordinator creates the default coordinator.
func NewRetryCoordinator(
	st store.Store,
	gateway delivery.Gateway,
	alerts AlertSink,
	interval time.Duration,
	workerLimit int,
	log *slog.Logger,
) RetryCoordinator {
	return &retryCoordinator{
		store:       st,
		gateway:     gateway,
		alerts:      alerts,
		interval:    interval,
		workerLimit: workerLimit,
		log:         log,
		now:         time.Now,
	}
}

// delay returns the backoff before the given attempt (1-based), clamped to
// the last table entry.
func delay(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(retryBackoff) {
		idx = len(retryBackoff) - 1
	}
	return retryBackoff[idx]
}

func (c *retryCoordinator) Start(ctx context.Context, n *model.Notification) error {
	next := c.now().Add(delay(1))
	n.Metadata.NextRetryAt = &next
	if err := c.store.UpdateNotification(ctx, n); err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	c.log.InfoContext(ctx, "Retry scheduled",
		slog.String("notification_id", n.ID),
		slog.Time("next_retry_at", next))
	return nil
}

// Run processes due retries on a fixed interval until the context ends.
func (c *retryCoordinator) Run(ctx context.Context) error {
	c.log.InfoContext(ctx, "Starting retry worker", slog.Int("max_workers", c.workerLimit))
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoContext(ctx, "Retry worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := c.processDue(ctx); err != nil {
				c.log.Error("Error processing retry batch", slog.Any("error", err))
			}
		}
	}
}

// processDue fetches notifications whose retry instant passed and processes
// them concurrently under the worker limit.
func (c *retryCoordinator) processDue(ctx context.Context) error {
	notifs, err := c.store.FindDueRetries(ctx, c.now())
	if err != nil {
		return err
	}
	if len(notifs) == 0 {
		return nil
	}

	c.log.InfoContext(ctx, "Processing due retries", slog.Int("count", len(notifs)))

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, c.workerLimit)

	for _, notif := range notifs {
		notif := notif
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			if err := c.Retry(ctx, &notif); err != nil {
				c.log.Error("Retry attempt errored",
					slog.String("notification_id", notif.ID),
					slog.Any("error", err))
			}
			// One notification's failure never aborts the batch.
			return nil
		})
	}
	return eg.Wait()
}

// Retry re-attempts primary-channel delivery for one notification. A
// notification deleted upstream between scheduling and firing is a silent
// no-op.
func (c *retryCoordinator) Retry(ctx context.Context, n *model.Notification) error {
	if n.Terminal() {
		return nil
	}
	now := c.now()

	// Expiry is a hard cutoff: abandoned, not retried.
	if n.ExpiredAt(now) {
		n.Failed = true
		n.FailedAt = &now
		n.Metadata.SkippedReason = SkipExpired
		n.Metadata.NextRetryAt = nil
		return c.update(ctx, n)
	}

	attempt := n.Metadata.RetryAttempts + 1
	if attempt > maxRetryAttempts {
		return c.exhaust(ctx, n, now)
	}

	err := c.gateway.Send(ctx, delivery.ChannelRealtime, n)
	if err == nil {
		n.Delivered = true
		n.DeliveredAt = &now
		n.Metadata.RetrySuccessful = true
		n.Metadata.NextRetryAt = nil
		c.log.InfoContext(ctx, "Retry succeeded",
			slog.String("notification_id", n.ID),
			slog.Int("attempt", attempt))
		return c.update(ctx, n)
	}

	n.Metadata.RetryAttempts = attempt
	n.Metadata.DeliveryAttempts++
	n.Metadata.LastDeliveryError = err.Error()

	if attempt >= maxRetryAttempts {
		return c.exhaust(ctx, n, now)
	}

	next := now.Add(delay(attempt + 1))
	n.Metadata.NextRetryAt = &next
	c.log.WarnContext(ctx, "Retry failed, rescheduling",
		slog.String("notification_id", n.ID),
		slog.Int("attempt", attempt),
		slog.Time("next_retry_at", next),
		slog.Any("error", err))
	return c.update(ctx, n)
}

// exhaust transitions the notification to its terminal failed state and
// escalates high and urgent priorities.
func (c *retryCoordinator) exhaust(ctx context.Context, n *model.Notification, now time.Time) error {
	n.Failed = true
	n.FailedAt = &now
	n.Metadata.DeliveryFailed = true
	n.Metadata.MaxRetriesExceeded = true
	n.Metadata.NextRetryAt = nil

	if err := c.update(ctx, n); err != nil {
		return err
	}
	metrics.RetriesExhausted.Inc()
	c.log.ErrorContext(ctx, "Delivery retries exhausted",
		slog.String("notification_id", n.ID),
		slog.String("recipient_id", n.RecipientID))

	if n.Priority == model.PriorityHigh || n.Priority == model.PriorityUrgent {
		if err := c.alerts.Alert(ctx, AdminAlert{
			NotificationID: n.ID,
			RecipientID:    n.RecipientID,
			Type:           n.Type,
			Priority:       n.Priority,
		}); err != nil {
			c.log.Error("Admin alert failed", slog.Any("error", err))
		}
	}
	return nil
}

// update persists a notification mutation, swallowing the not-found case.
func (c *retryCoordinator) update(ctx context.Context, n *model.Notification) error {
	if err := c.store.UpdateNotification(ctx, n); err != nil {
		if apperrors.IsNotFound(err) {
			c.log.DebugContext(ctx, "Notification vanished before retry",
				slog.String("notification_id", n.ID))
			return nil
		}
		return err
	}
	return nil
}
