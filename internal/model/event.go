package model

import "time"

// EventKind routes an ingested event to the right pipeline stage.
type EventKind string

const (
	// EventMetricsSnapshot carries aggregated couple metrics for milestone
	// detection.
	EventMetricsSnapshot EventKind = "metrics_snapshot"
	// EventNotification carries a directly-created notification for fan-out.
	EventNotification EventKind = "notification"
)

// Event is the message shape consumed from the check-in events topic and
// accepted on the manual trigger endpoint.
type Event struct {
	Kind           EventKind `json:"kind"`
	CoupleID       string    `json:"couple_id"`
	Members        []string  `json:"members,omitempty"`
	Metrics        MetricSet `json:"metrics,omitempty"`
	Recipients     []string  `json:"recipients,omitempty"`
	Type           string    `json:"type,omitempty"`
	Title          string    `json:"title,omitempty"`
	Body           string    `json:"body,omitempty"`
	Priority       Priority  `json:"priority,omitempty"`
	RequiresAction bool      `json:"requires_action,omitempty"`
	Category       string    `json:"category,omitempty"`
	Data           JSONMap   `json:"data,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

// Broadcast is the realtime message published for delivered notifications
// and freshly detected milestones.
type Broadcast struct {
	Kind        string    `json:"kind"` // "notification" or "milestone"
	RecipientID string    `json:"recipient_id,omitempty"`
	CoupleID    string    `json:"couple_id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Priority    Priority  `json:"priority,omitempty"`
	Data        JSONMap   `json:"data,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}
