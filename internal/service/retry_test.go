package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/duetapp/notify/internal/delivery"
	apperrors "github.com/duetapp/notify/internal/errors"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/store"
)

// alertRecorder captures escalations for assertions.
type alertRecorder struct {
	mu     sync.Mutex
	alerts []AdminAlert
}

func (a *alertRecorder) Alert(_ context.Context, alert AdminAlert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
	return nil
}

func newTestRetry(t *testing.T, st store.Store, gw delivery.Gateway, alerts AlertSink, now time.Time) *retryCoordinator {
	t.Helper()
	c := NewRetryCoordinator(st, gw, alerts, time.Second, 4, slog.Default()).(*retryCoordinator)
	c.now = func() time.Time { return now }
	return c
}

func TestDelayTable(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 30 * time.Second},
		{3, 2 * time.Minute},
		{4, 2 * time.Minute}, // clamped
		{0, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryStartSchedulesFirstAttempt(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()

	c := newTestRetry(t, st, gw, &alertRecorder{}, now)
	n := &model.Notification{ID: "n1", RecipientID: "user-a"}
	if err := c.Start(context.Background(), n); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := now.Add(5 * time.Second)
	if n.Metadata.NextRetryAt == nil || !n.Metadata.NextRetryAt.Equal(want) {
		t.Errorf("next_retry_at = %v, want %v", n.Metadata.NextRetryAt, want)
	}
}

func TestRetryBackoffSequence(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	alerts := &alertRecorder{}

	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil)
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).
		Return(errors.New("still down"))

	c := newTestRetry(t, st, gw, alerts, start)
	n := &model.Notification{ID: "n1", RecipientID: "user-a", Priority: model.PriorityNormal}

	// Initial dispatch failure schedules the first retry 5s out.
	if err := c.Start(context.Background(), n); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if want := start.Add(5 * time.Second); !n.Metadata.NextRetryAt.Equal(want) {
		t.Fatalf("first retry at %v, want %v", n.Metadata.NextRetryAt, want)
	}

	// First retry fails: next attempt 30s after this one.
	c.now = func() time.Time { return start.Add(5 * time.Second) }
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if n.Metadata.RetryAttempts != 1 {
		t.Fatalf("retry_attempts = %d, want 1", n.Metadata.RetryAttempts)
	}
	if want := start.Add(5*time.Second + 30*time.Second); !n.Metadata.NextRetryAt.Equal(want) {
		t.Fatalf("second retry at %v, want %v", n.Metadata.NextRetryAt, want)
	}

	// Second retry fails: next attempt 2m after this one.
	c.now = func() time.Time { return start.Add(35 * time.Second) }
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if n.Metadata.RetryAttempts != 2 {
		t.Fatalf("retry_attempts = %d, want 2", n.Metadata.RetryAttempts)
	}
	if want := start.Add(35*time.Second + 2*time.Minute); !n.Metadata.NextRetryAt.Equal(want) {
		t.Fatalf("third retry at %v, want %v", n.Metadata.NextRetryAt, want)
	}

	// Third retry fails: exhausted, no fourth attempt scheduled.
	c.now = func() time.Time { return start.Add(155 * time.Second) }
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if !n.Failed {
		t.Error("notification not failed after exhaustion")
	}
	if !n.Metadata.DeliveryFailed || !n.Metadata.MaxRetriesExceeded {
		t.Error("exhaustion metadata flags not set")
	}
	if n.Metadata.NextRetryAt != nil {
		t.Errorf("next_retry_at = %v after exhaustion, want nil", n.Metadata.NextRetryAt)
	}
	if len(alerts.alerts) != 0 {
		t.Errorf("normal priority escalated: %v", alerts.alerts)
	}
}

func TestRetryExhaustionEscalatesHighPriority(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	alerts := &alertRecorder{}

	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).
		Return(errors.New("unreachable")).Once()

	c := newTestRetry(t, st, gw, alerts, now)
	n := &model.Notification{
		ID:          "n1",
		RecipientID: "user-a",
		Type:        model.TypeReminder,
		Priority:    model.PriorityUrgent,
		Metadata:    model.DeliveryMetadata{RetryAttempts: 2},
	}
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}

	if len(alerts.alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts.alerts))
	}
	if alerts.alerts[0].NotificationID != "n1" || alerts.alerts[0].Priority != model.PriorityUrgent {
		t.Errorf("unexpected alert %+v", alerts.alerts[0])
	}
}

func TestRetrySuccess(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)

	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).Return(nil).Once()

	c := newTestRetry(t, st, gw, &alertRecorder{}, now)
	next := now.Add(-time.Second)
	n := &model.Notification{
		ID:          "n1",
		RecipientID: "user-a",
		Metadata:    model.DeliveryMetadata{RetryAttempts: 1, NextRetryAt: &next},
	}
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}

	if !n.Delivered || !n.Metadata.RetrySuccessful {
		t.Error("successful retry must mark delivered and retry_successful")
	}
	if n.Metadata.NextRetryAt != nil {
		t.Error("next_retry_at not cleared after success")
	}
}

func TestRetryExpiredNotificationAbandoned(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)

	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()

	c := newTestRetry(t, st, gw, &alertRecorder{}, now)
	expired := now.Add(-time.Minute)
	n := &model.Notification{ID: "n1", RecipientID: "user-a", ExpiresAt: &expired}
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}

	if !n.Failed || n.Metadata.SkippedReason != SkipExpired {
		t.Errorf("expired notification: failed=%v reason=%q", n.Failed, n.Metadata.SkippedReason)
	}
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetryVanishedNotificationNoOp(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)

	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).
		Return(errors.New("down")).Once()
	st.On("UpdateNotification", mock.Anything, mock.Anything).
		Return(apperrors.NewNotFound("notification n1")).Once()

	c := newTestRetry(t, st, gw, &alertRecorder{}, now)
	n := &model.Notification{ID: "n1", RecipientID: "user-a"}
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() on vanished notification error = %v, want nil", err)
	}
}

func TestRetryTerminalNotificationNoOp(t *testing.T) {
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)

	c := newTestRetry(t, st, gw, &alertRecorder{}, time.Now())
	n := &model.Notification{ID: "n1", Delivered: true}
	if err := c.Retry(context.Background(), n); err != nil {
		t.Fatalf("Retry() on delivered notification error = %v", err)
	}
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdateNotification", mock.Anything, mock.Anything)
}

func TestProcessDueIsolatesFailures(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)

	st.On("FindDueRetries", mock.Anything, now).Return([]model.Notification{
		{ID: "n1", RecipientID: "user-a"},
		{ID: "n2", RecipientID: "user-b"},
	}, nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.MatchedBy(func(n *model.Notification) bool {
		return n.ID == "n1"
	})).Return(errors.New("down")).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.MatchedBy(func(n *model.Notification) bool {
		return n.ID == "n2"
	})).Return(nil).Once()
	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Twice()

	c := newTestRetry(t, st, gw, &alertRecorder{}, now)
	if err := c.processDue(context.Background()); err != nil {
		t.Fatalf("processDue() error = %v", err)
	}
}
