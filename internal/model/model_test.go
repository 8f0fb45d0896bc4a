package model

import (
	"testing"
	"time"
)

func TestPriorityNormalize(t *testing.T) {
	tests := []struct {
		in   Priority
		want Priority
	}{
		{PriorityUrgent, PriorityUrgent},
		{PriorityLow, PriorityLow},
		{"", PriorityNormal},
		{"critical", PriorityNormal},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReminderEffectiveTarget(t *testing.T) {
	scheduled := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	next := scheduled.Add(24 * time.Hour)

	r := Reminder{ScheduledFor: scheduled}
	if got := r.EffectiveTarget(); !got.Equal(scheduled) {
		t.Errorf("EffectiveTarget() = %v, want scheduled_for %v", got, scheduled)
	}

	r.NextOccurrence = &next
	if got := r.EffectiveTarget(); !got.Equal(next) {
		t.Errorf("EffectiveTarget() = %v, want next_occurrence %v", got, next)
	}
}

func TestReminderSnoozedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name string
		r    Reminder
		want bool
	}{
		{"not snoozed", Reminder{}, false},
		{"snoozed indefinitely", Reminder{IsSnoozed: true}, true},
		{"snooze still pending", Reminder{IsSnoozed: true, SnoozeUntil: &later}, true},
		{"snooze lapsed", Reminder{IsSnoozed: true, SnoozeUntil: &earlier}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.SnoozedAt(now); got != tt.want {
				t.Errorf("SnoozedAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReminderSchedule(t *testing.T) {
	r := Reminder{}
	if r.Schedule() != nil {
		t.Error("Schedule() on zero descriptor must be nil")
	}

	r.CustomSchedule = CustomSchedule{DaysOfWeek: []int{1, 3}, TimeOfDay: "19:00"}
	cs := r.Schedule()
	if cs == nil || cs.TimeOfDay != "19:00" {
		t.Errorf("Schedule() = %+v, want populated descriptor", cs)
	}
}

func TestNotificationExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	if (&Notification{}).ExpiredAt(now) {
		t.Error("notification without expiry must never expire")
	}
	if !(&Notification{ExpiresAt: &past}).ExpiredAt(now) {
		t.Error("past expiry not detected")
	}
	if (&Notification{ExpiresAt: &future}).ExpiredAt(now) {
		t.Error("future expiry reported as expired")
	}
}

func TestNotificationTerminal(t *testing.T) {
	if (&Notification{}).Terminal() {
		t.Error("pending notification reported terminal")
	}
	if !(&Notification{Delivered: true}).Terminal() {
		t.Error("delivered notification not terminal")
	}
	if !(&Notification{Failed: true}).Terminal() {
		t.Error("failed notification not terminal")
	}
}
