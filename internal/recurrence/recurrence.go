// Package recurrence computes the next occurrence instant for a reminder's
// frequency descriptor. It is pure: no I/O, deterministic for given inputs.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duetapp/notify/internal/model"
)

// Predicate resolves a conditional schedule to its next instant after ref.
// It returns false when the condition is unsatisfiable.
type Predicate func(ref time.Time) (time.Time, bool)

// Calculator resolves recurrence descriptors. The zero value works for every
// shape except conditional schedules, which need an injected predicate.
type Calculator struct {
	Predicates map[string]Predicate
}

// Next returns the occurrence strictly after ref for the given frequency and
// descriptor. ok is false when the reminder should not be rescheduled (once,
// or an unsatisfiable conditional). A non-nil error means the descriptor is
// malformed and the caller should skip the reminder without rescheduling.
func (c *Calculator) Next(freq model.Frequency, cs *model.CustomSchedule, ref time.Time) (time.Time, bool, error) {
	switch freq {
	case model.FrequencyOnce:
		return time.Time{}, false, nil
	case model.FrequencyDaily:
		return ref.Add(24 * time.Hour), true, nil
	case model.FrequencyWeekly:
		return nextWeekly(cs, ref, 7)
	case model.FrequencyBiweekly:
		return nextWeekly(cs, ref, 14)
	case model.FrequencyMonthly:
		return nextMonthly(cs, ref)
	case model.FrequencyCustom:
		return c.nextCustom(cs, ref)
	default:
		return time.Time{}, false, fmt.Errorf("unknown frequency %q", freq)
	}
}

// Next is the package-level form for schedules that need no predicates.
func Next(freq model.Frequency, cs *model.CustomSchedule, ref time.Time) (time.Time, bool, error) {
	var c Calculator
	return c.Next(freq, cs, ref)
}

// nextWeekly resolves weekly and biweekly frequencies. When the descriptor
// lists weekdays the result is the soonest listed weekday at the configured
// time of day strictly after ref; otherwise the fixed interval applies.
func nextWeekly(cs *model.CustomSchedule, ref time.Time, intervalDays int) (time.Time, bool, error) {
	if cs == nil || len(cs.DaysOfWeek) == 0 {
		return ref.AddDate(0, 0, intervalDays), true, nil
	}

	hour, minute, err := parseTimeOfDay(cs.TimeOfDay, ref)
	if err != nil {
		return time.Time{}, false, err
	}

	listed := make(map[time.Weekday]bool, len(cs.DaysOfWeek))
	for _, d := range cs.DaysOfWeek {
		if d < 0 || d > 6 {
			return time.Time{}, false, fmt.Errorf("day of week %d out of range", d)
		}
		listed[time.Weekday(d)] = true
	}

	for offset := 0; offset <= 7; offset++ {
		day := ref.AddDate(0, 0, offset)
		if !listed[day.Weekday()] {
			continue
		}
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, ref.Location())
		if candidate.After(ref) {
			return candidate, true, nil
		}
	}
	// Listed days exist but none matched inside a week; fall back to the
	// fixed interval.
	return ref.AddDate(0, 0, intervalDays), true, nil
}

// nextMonthly advances one calendar month and clamps the day to the target
// month's length, so a day-31 schedule lands on Feb 28/29 rather than
// spilling into March.
func nextMonthly(cs *model.CustomSchedule, ref time.Time) (time.Time, bool, error) {
	day := ref.Day()
	hour, minute := ref.Hour(), ref.Minute()
	if cs != nil {
		if cs.DayOfMonth != 0 {
			if cs.DayOfMonth < 1 || cs.DayOfMonth > 31 {
				return time.Time{}, false, fmt.Errorf("day of month %d out of range", cs.DayOfMonth)
			}
			day = cs.DayOfMonth
		}
		if cs.TimeOfDay != "" {
			h, m, err := parseTimeOfDay(cs.TimeOfDay, ref)
			if err != nil {
				return time.Time{}, false, err
			}
			hour, minute = h, m
		}
	}

	year, month := ref.Year(), ref.Month()+1
	if month > time.December {
		month = time.January
		year++
	}
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, ref.Location()), true, nil
}

func (c *Calculator) nextCustom(cs *model.CustomSchedule, ref time.Time) (time.Time, bool, error) {
	if cs == nil {
		return time.Time{}, false, fmt.Errorf("custom frequency without schedule")
	}
	switch cs.Type {
	case model.ScheduleInterval:
		d, err := intervalDuration(cs.IntervalAmount, cs.IntervalUnit)
		if err != nil {
			return time.Time{}, false, err
		}
		return ref.Add(d), true, nil
	case model.ScheduleCron:
		return nextCron(cs.Cron, ref)
	case model.ScheduleConditional:
		pred, ok := c.Predicates[cs.Condition]
		if !ok {
			return time.Time{}, false, fmt.Errorf("no predicate registered for condition %q", cs.Condition)
		}
		next, ok := pred(ref)
		return next, ok, nil
	default:
		return time.Time{}, false, fmt.Errorf("unknown custom schedule type %q", cs.Type)
	}
}

func intervalDuration(amount int, unit string) (time.Duration, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("interval amount %d must be positive", amount)
	}
	switch unit {
	case "minutes":
		return time.Duration(amount) * time.Minute, nil
	case "hours":
		return time.Duration(amount) * time.Hour, nil
	case "days":
		return time.Duration(amount) * 24 * time.Hour, nil
	case "weeks":
		return time.Duration(amount) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown interval unit %q", unit)
	}
}

// cronField matches one field of the restricted "minute hour day-of-week"
// expression: either a wildcard or a comma-separated list of integers.
type cronField struct {
	any    bool
	values map[int]bool
}

func (f cronField) match(v int) bool {
	return f.any || f.values[v]
}

func parseCronField(raw string, min, max int) (cronField, error) {
	if raw == "*" {
		return cronField{any: true}, nil
	}
	values := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return cronField{}, fmt.Errorf("bad cron field value %q: %w", part, err)
		}
		if v < min || v > max {
			return cronField{}, fmt.Errorf("cron field value %d outside [%d,%d]", v, min, max)
		}
		values[v] = true
	}
	if len(values) == 0 {
		return cronField{}, fmt.Errorf("empty cron field %q", raw)
	}
	return cronField{values: values}, nil
}

// nextCron resolves the restricted three-field expression against ref by
// scanning forward one minute at a time. With a day-of-week field the first
// match always falls within eight days, which bounds the scan.
func nextCron(expr string, ref time.Time) (time.Time, bool, error) {
	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return time.Time{}, false, fmt.Errorf("cron expression %q must have minute, hour and day-of-week fields", expr)
	}
	minuteF, err := parseCronField(fields[0], 0, 59)
	if err != nil {
		return time.Time{}, false, err
	}
	hourF, err := parseCronField(fields[1], 0, 23)
	if err != nil {
		return time.Time{}, false, err
	}
	dowF, err := parseCronField(fields[2], 0, 6)
	if err != nil {
		return time.Time{}, false, err
	}

	candidate := ref.Truncate(time.Minute).Add(time.Minute)
	limit := candidate.AddDate(0, 0, 8)
	for candidate.Before(limit) {
		if dowF.match(int(candidate.Weekday())) && hourF.match(candidate.Hour()) && minuteF.match(candidate.Minute()) {
			return candidate, true, nil
		}
		candidate = candidate.Add(time.Minute)
	}
	return time.Time{}, false, fmt.Errorf("cron expression %q has no occurrence within 8 days", expr)
}

// parseTimeOfDay parses "HH:MM"; an empty value keeps ref's clock time.
func parseTimeOfDay(s string, ref time.Time) (hour, minute int, err error) {
	if s == "" {
		return ref.Hour(), ref.Minute(), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
