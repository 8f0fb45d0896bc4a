package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Frequency is the recurrence shape of a reminder.
type Frequency string

const (
	FrequencyOnce     Frequency = "once"
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// Priority orders notifications and reminders for dispatch.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank maps a priority to a sortable weight. Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityLow:
		return 0
	default:
		return 1
	}
}

// Normalize returns the priority itself, or normal for empty/unknown values.
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p
	default:
		return PriorityNormal
	}
}

// ScheduleType selects the interpretation of a CustomSchedule.
type ScheduleType string

const (
	ScheduleInterval    ScheduleType = "interval"
	ScheduleCron        ScheduleType = "cron"
	ScheduleConditional ScheduleType = "conditional"
)

// CustomSchedule is the structured recurrence descriptor carried by a
// reminder. For weekly/biweekly frequencies only DaysOfWeek/TimeOfDay are
// consulted; for monthly only DayOfMonth/TimeOfDay; for custom frequency the
// Type field dispatches between interval, cron and conditional rules.
type CustomSchedule struct {
	Type           ScheduleType `json:"type,omitempty"`
	IntervalAmount int          `json:"interval_amount,omitempty"`
	IntervalUnit   string       `json:"interval_unit,omitempty"` // minutes, hours, days, weeks
	DaysOfWeek     []int        `json:"days_of_week,omitempty"`  // 0=Sunday .. 6=Saturday
	TimeOfDay      string       `json:"time_of_day,omitempty"`   // "19:00"
	DayOfMonth     int          `json:"day_of_month,omitempty"`
	Cron           string       `json:"cron,omitempty"`      // "min hour dow" subset
	Condition      string       `json:"condition,omitempty"` // key for an injected predicate
}

// Value implements driver.Valuer so the schedule is stored as JSONB.
func (cs CustomSchedule) Value() (driver.Value, error) {
	return json.Marshal(cs)
}

// Scan implements sql.Scanner.
func (cs *CustomSchedule) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, cs)
	case string:
		return json.Unmarshal([]byte(v), cs)
	default:
		return fmt.Errorf("unsupported source type %T for CustomSchedule", src)
	}
}

// Reminder is a schedulable intent owned by a couple. The scheduler mutates
// LastTriggeredAt, TriggerCount and NextOccurrence on each trigger; creation
// and deactivation belong to the upstream application.
type Reminder struct {
	ID              string         `db:"id" json:"id"`
	CoupleID        string         `db:"couple_id" json:"couple_id"`
	Title           string         `db:"title" json:"title"`
	Message         string         `db:"message" json:"message"`
	Category        string         `db:"category" json:"category"`
	Frequency       Frequency      `db:"frequency" json:"frequency"`
	ScheduledFor    time.Time      `db:"scheduled_for" json:"scheduled_for"`
	NextOccurrence  *time.Time     `db:"next_occurrence" json:"next_occurrence,omitempty"`
	LastTriggeredAt *time.Time     `db:"last_triggered_at" json:"last_triggered_at,omitempty"`
	TriggerCount    int            `db:"trigger_count" json:"trigger_count"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	IsSnoozed       bool           `db:"is_snoozed" json:"is_snoozed"`
	SnoozeUntil     *time.Time     `db:"snooze_until" json:"snooze_until,omitempty"`
	CustomSchedule  CustomSchedule `db:"custom_schedule" json:"custom_schedule,omitempty"`
	Priority        Priority       `db:"priority" json:"priority"`
	Recipients      pq.StringArray `db:"recipients" json:"recipients"`
	RequiresAction  bool           `db:"requires_action" json:"requires_action"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Schedule returns the recurrence descriptor, or nil when none was set.
func (r *Reminder) Schedule() *CustomSchedule {
	cs := r.CustomSchedule
	if cs.Type == "" && len(cs.DaysOfWeek) == 0 && cs.TimeOfDay == "" && cs.DayOfMonth == 0 {
		return nil
	}
	return &cs
}

// Recurring reports whether the reminder reschedules after a trigger.
func (r *Reminder) Recurring() bool {
	return r.Frequency != FrequencyOnce
}

// EffectiveTarget is the instant the scheduler matches against the due
// window: the computed next occurrence once one exists, else the initial
// scheduled instant.
func (r *Reminder) EffectiveTarget() time.Time {
	if r.NextOccurrence != nil {
		return *r.NextOccurrence
	}
	return r.ScheduledFor
}

// SnoozedAt reports whether the reminder is suppressed at the given instant.
func (r *Reminder) SnoozedAt(now time.Time) bool {
	if !r.IsSnoozed {
		return false
	}
	return r.SnoozeUntil == nil || r.SnoozeUntil.After(now)
}
