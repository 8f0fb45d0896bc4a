package model

import "time"

// Milestone records that a couple crossed a threshold. The pair
// (CoupleID, Key) is unique and is the idempotency guard for detection:
// a milestone is created exactly once and never mutated afterward.
type Milestone struct {
	ID          string    `db:"id" json:"id"`
	CoupleID    string    `db:"couple_id" json:"couple_id"`
	Category    string    `db:"category" json:"category"`
	Key         string    `db:"milestone_key" json:"milestone_key"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	AchievedAt  time.Time `db:"achieved_at" json:"achieved_at"`
}

// MetricSet holds the aggregated metric values supplied by the upstream
// application. The detector treats them as opaque numbers.
type MetricSet map[string]float64

// DetectionRule is a declarative single-metric threshold. Days-based rules
// (Days > 0) compare against a streak-length metric; all others compare
// Threshold against the metric named by Metric.
type DetectionRule struct {
	Key         string
	Title       string
	Description string
	Metric      string
	Threshold   float64
	Days        int
}

// RuleGroup is an ordered category of detection rules. Groups and the rules
// within them are evaluated in declared order.
type RuleGroup struct {
	Category string
	Rules    []DetectionRule
}

// ComboCondition is one leg of a combination rule.
type ComboCondition struct {
	Metric string
	Min    float64
}

// ComboRule awards a milestone only when every condition holds at once.
// Combination rules are evaluated after all single-metric rules.
type ComboRule struct {
	Key         string
	Category    string
	Title       string
	Description string
	Conditions  []ComboCondition
}
