package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/duetapp/notify/internal/delivery"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/store"
)

// stubPrefs is a fixed-answer preference provider.
type stubPrefs struct {
	disabled bool
	push     bool
	email    bool
}

func (p stubPrefs) TypeDisabled(context.Context, string, string) (bool, error) {
	return p.disabled, nil
}
func (p stubPrefs) PushEnabled(context.Context, string) (bool, error) { return p.push, nil }
func (p stubPrefs) EmailForActions(context.Context, string) (bool, error) {
	return p.email, nil
}

func newTestDispatcher(t *testing.T, st store.Store, gw delivery.Gateway, prefs PreferenceProvider, retry RetryCoordinator, now time.Time) *dispatcher {
	t.Helper()
	d := NewDispatcher(st, gw, prefs, retry, slog.Default()).(*dispatcher)
	d.now = func() time.Time { return now }
	return d
}

func TestDispatcherFanOutCreatesOnePerRecipient(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	var created []*model.Notification
	st.On("CreateNotification", mock.Anything, mock.AnythingOfType("*model.Notification")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*model.Notification))
		}).
		Return(nil).Twice()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).Return(nil).Twice()
	st.On("UpdateNotification", mock.Anything, mock.AnythingOfType("*model.Notification")).
		Return(nil).Twice()

	d := newTestDispatcher(t, st, gw, stubPrefs{}, retry, now)
	ids, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients: []string{"user-a", "user-b"},
		Type:       model.TypeReminder,
		Title:      "Evening check-in",
		Body:       "Time to check in together",
	})
	if err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("FanOut() created %d notifications, want 2", len(ids))
	}

	for _, n := range created {
		if n.Priority != model.PriorityNormal {
			t.Errorf("priority = %s, want normal default", n.Priority)
		}
		if n.ExpiresAt == nil || !n.ExpiresAt.Equal(now.Add(24*time.Hour)) {
			t.Errorf("expires_at = %v, want 24h default", n.ExpiresAt)
		}
		if !n.Delivered {
			t.Errorf("notification %s not marked delivered", n.ID)
		}
		if n.DeliveredAt == nil || !n.DeliveredAt.Equal(now) {
			t.Errorf("delivered_at = %v, want %v", n.DeliveredAt, now)
		}
	}
}

func TestDispatcherExpiredNeverReachesGateway(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	var updated *model.Notification
	st.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("UpdateNotification", mock.Anything, mock.AnythingOfType("*model.Notification")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*model.Notification)
		}).
		Return(nil).Once()

	d := newTestDispatcher(t, st, gw, stubPrefs{}, retry, now)
	_, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients: []string{"user-a"},
		Type:       model.TypeReminder,
		Title:      "Stale",
		Priority:   model.PriorityUrgent,
		ExpiresAt:  &past,
	})
	if err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}

	if updated.Metadata.SkippedReason != SkipExpired {
		t.Errorf("skipped_reason = %q, want %q", updated.Metadata.SkippedReason, SkipExpired)
	}
	if updated.Delivered || updated.Failed {
		t.Error("expired notification must not be terminal-delivered or failed")
	}
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	retry.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestDispatcherUserDisabledSkips(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	var updated *model.Notification
	st.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("UpdateNotification", mock.Anything, mock.AnythingOfType("*model.Notification")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*model.Notification)
		}).
		Return(nil).Once()

	d := newTestDispatcher(t, st, gw, stubPrefs{disabled: true}, retry, now)
	if _, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients: []string{"user-a"},
		Type:       model.TypeReminder,
		Title:      "Muted",
	}); err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}

	if updated.Metadata.SkippedReason != SkipUserDisabled {
		t.Errorf("skipped_reason = %q, want %q", updated.Metadata.SkippedReason, SkipUserDisabled)
	}
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherPrimaryFailureStartsRetry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	st.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).
		Return(errors.New("broadcast unavailable")).Once()

	var handed *model.Notification
	retry.On("Start", mock.Anything, mock.AnythingOfType("*model.Notification")).
		Run(func(args mock.Arguments) {
			handed = args.Get(1).(*model.Notification)
		}).
		Return(nil).Once()

	d := newTestDispatcher(t, st, gw, stubPrefs{}, retry, now)
	ids, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients: []string{"user-a"},
		Type:       model.TypeReminder,
		Title:      "Flaky",
	})
	if err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("FanOut() created %d notifications, want 1", len(ids))
	}

	if handed.Metadata.DeliveryAttempts != 1 {
		t.Errorf("delivery_attempts = %d, want 1", handed.Metadata.DeliveryAttempts)
	}
	if handed.Metadata.LastDeliveryError == "" {
		t.Error("last_delivery_error not recorded")
	}
	if handed.Delivered {
		t.Error("failed primary delivery must not mark delivered")
	}
}

func TestDispatcherChannelSelection(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	st.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelPush, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelEmail, mock.Anything).Return(nil).Once()

	d := newTestDispatcher(t, st, gw, stubPrefs{push: true, email: true}, retry, now)
	if _, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients:     []string{"user-a"},
		Type:           model.TypeReminder,
		Title:          "Action needed",
		Priority:       model.PriorityHigh,
		RequiresAction: true,
	}); err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}
}

func TestDispatcherNormalPrioritySkipsPush(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	st.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	st.On("UpdateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Send", mock.Anything, delivery.ChannelRealtime, mock.Anything).Return(nil).Once()

	d := newTestDispatcher(t, st, gw, stubPrefs{push: true, email: true}, retry, now)
	if _, err := d.FanOut(context.Background(), FanOutRequest{
		Recipients: []string{"user-a"},
		Type:       model.TypeReminder,
		Title:      "FYI",
	}); err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}

	gw.AssertNotCalled(t, "Send", mock.Anything, delivery.ChannelPush, mock.Anything)
	gw.AssertNotCalled(t, "Send", mock.Anything, delivery.ChannelEmail, mock.Anything)
}

func TestDispatcherNoRecipients(t *testing.T) {
	st := store.NewMockStore(t)
	gw := delivery.NewMockGateway(t)
	retry := NewMockRetryCoordinator(t)

	d := newTestDispatcher(t, st, gw, stubPrefs{}, retry, time.Now())
	if _, err := d.FanOut(context.Background(), FanOutRequest{Type: model.TypeReminder}); err == nil {
		t.Fatal("FanOut() with no recipients must error")
	}
}
