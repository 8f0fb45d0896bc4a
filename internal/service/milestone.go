package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/duetapp/notify/internal/delivery"
	apperrors "github.com/duetapp/notify/internal/errors"
	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/store"
)

// Detector evaluates declarative milestone rules against supplied metrics
// and creates achievement records idempotently. Detection is a pure function
// of (metrics, rules) plus the store's uniqueness guard, so re-running it
// with unchanged inputs never produces duplicates.
type Detector interface {
	Detect(ctx context.Context, coupleID string, members []string, metricSet model.MetricSet,
		groups []model.RuleGroup, combos []model.ComboRule) ([]string, error)
}

type detector struct {
	store       store.Store
	dispatcher  Dispatcher
	broadcaster delivery.Broadcaster
	log         *slog.Logger
	now         func() time.Time
}

// NewDetector creates the milestone detector.
func NewDetector(
	st store.Store,
	dispatcher Dispatcher,
	broadcaster delivery.Broadcaster,
	log *slog.Logger,
) Detector {
	return &detector{
		store:       st,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// Detect walks the rule groups in declared order, then combination rules,
// then the velocity meta-rule. Ordering matters: the velocity rule reads the
// detector's own committed output, so single-metric and combination rules
// are persisted first.
func (d *detector) Detect(ctx context.Context, coupleID string, members []string, metricSet model.MetricSet,
	groups []model.RuleGroup, combos []model.ComboRule) ([]string, error) {

	if metricSet == nil {
		metricSet = model.MetricSet{}
	}
	now := d.now()
	var created []string

	for _, group := range groups {
		for _, rule := range group.Rules {
			value, ok := metricSet[rule.Metric]
			if !ok {
				continue
			}
			if !satisfied(rule, value) {
				continue
			}
			if id := d.award(ctx, coupleID, members, group.Category, rule.Key, rule.Title, rule.Description, now); id != "" {
				created = append(created, id)
			}
		}
	}

	for _, combo := range combos {
		if !comboSatisfied(combo, metricSet) {
			continue
		}
		if id := d.award(ctx, coupleID, members, combo.Category, combo.Key, combo.Title, combo.Description, now); id != "" {
			created = append(created, id)
		}
	}

	// Velocity meta-rule, evaluated last against the committed milestones
	// including this run's.
	count, err := d.store.CountMilestonesSince(ctx, coupleID, now.AddDate(0, 0, -model.VelocityWindowDays))
	if err != nil {
		d.log.ErrorContext(ctx, "Milestone velocity count failed",
			slog.String("couple_id", coupleID),
			slog.Any("error", err))
		return created, nil
	}
	if count >= model.VelocityThreshold {
		if id := d.award(ctx, coupleID, members, model.VelocityCategory, model.VelocityKey,
			model.VelocityTitle, model.VelocityDescription, now); id != "" {
			created = append(created, id)
		}
	}

	return created, nil
}

func satisfied(rule model.DetectionRule, value float64) bool {
	if rule.Days > 0 {
		return value >= float64(rule.Days)
	}
	return value >= rule.Threshold
}

func comboSatisfied(combo model.ComboRule, metricSet model.MetricSet) bool {
	for _, cond := range combo.Conditions {
		value, ok := metricSet[cond.Metric]
		if !ok || value < cond.Min {
			return false
		}
	}
	return len(combo.Conditions) > 0
}

// award creates the milestone behind the (couple_id, key) uniqueness guard
// and announces it when this run actually created the record. A rejected
// insert means another run got there first and is not an error.
func (d *detector) award(ctx context.Context, coupleID string, members []string, category, key, title, description string, now time.Time) string {
	m := &model.Milestone{
		ID:          uuid.NewString(),
		CoupleID:    coupleID,
		Category:    category,
		Key:         key,
		Title:       title,
		Description: description,
		AchievedAt:  now,
	}

	createdNow, err := d.store.CreateMilestoneIfAbsent(ctx, m)
	if err != nil {
		if apperrors.IsConflict(err) {
			return ""
		}
		d.log.ErrorContext(ctx, "Milestone create failed",
			slog.String("couple_id", coupleID),
			slog.String("milestone_key", key),
			slog.Any("error", err))
		return ""
	}
	if !createdNow {
		return ""
	}

	metrics.MilestonesCreated.WithLabelValues(category).Inc()
	d.log.InfoContext(ctx, "Milestone achieved",
		slog.String("couple_id", coupleID),
		slog.String("milestone_key", key))

	d.announce(ctx, m, members)
	return m.ID
}

// announce notifies both members and broadcasts the achievement. Failures
// here are logged only: the milestone record is already committed.
func (d *detector) announce(ctx context.Context, m *model.Milestone, members []string) {
	if len(members) > 0 {
		_, err := d.dispatcher.FanOut(ctx, FanOutRequest{
			Recipients: members,
			Type:       model.TypeMilestone,
			Category:   m.Category,
			Title:      "Milestone unlocked: " + m.Title,
			Body:       m.Description,
			Priority:   model.PriorityNormal,
			Data: model.JSONMap{
				"milestone_key": m.Key,
				"couple_id":     m.CoupleID,
			},
		})
		if err != nil {
			d.log.Error("Milestone fan-out failed",
				slog.String("milestone_key", m.Key),
				slog.Any("error", err))
		}
	}

	if err := d.broadcaster.Publish(ctx, model.Broadcast{
		Kind:     "milestone",
		CoupleID: m.CoupleID,
		Title:    m.Title,
		Body:     m.Description,
		Data: model.JSONMap{
			"milestone_key": m.Key,
			"category":      m.Category,
		},
		SentAt: d.now(),
	}); err != nil {
		d.log.Error("Milestone broadcast failed",
			slog.String("milestone_key", m.Key),
			slog.Any("error", err))
	}
}
