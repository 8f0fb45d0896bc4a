package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Notification type constants used across the pipeline.
const (
	TypeReminder  = "reminder"
	TypeMilestone = "milestone"
	TypeCheckin   = "checkin"
)

// JSONMap is a free-form payload stored as JSONB.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(JSONMap{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported source type %T for JSONMap", src)
	}
}

// DeliveryMetadata is the mutable bookkeeping the dispatcher and retry
// coordinator keep on a notification. DeliveryAttempts counts failed
// first-channel attempts, RetryAttempts counts completed retry passes.
type DeliveryMetadata struct {
	DeliveryAttempts   int        `json:"delivery_attempts,omitempty"`
	RetryAttempts      int        `json:"retry_attempts,omitempty"`
	LastDeliveryError  string     `json:"last_delivery_error,omitempty"`
	NextRetryAt        *time.Time `json:"next_retry_at,omitempty"`
	SkippedReason      string     `json:"skipped_reason,omitempty"`
	DeliveryFailed     bool       `json:"delivery_failed,omitempty"`
	MaxRetriesExceeded bool       `json:"max_retries_exceeded,omitempty"`
	RetrySuccessful    bool       `json:"retry_successful,omitempty"`
}

// Value implements driver.Valuer.
func (d DeliveryMetadata) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *DeliveryMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported source type %T for DeliveryMetadata", src)
	}
}

// Notification is a single delivery target for a single recipient, created
// at fan-out time. Delivered and Failed are mutually exclusive terminal
// flags; once either is set no further delivery attempts occur.
type Notification struct {
	ID             string           `db:"id" json:"id"`
	RecipientID    string           `db:"recipient_id" json:"recipient_id"`
	Type           string           `db:"type" json:"type"`
	Title          string           `db:"title" json:"title"`
	Body           string           `db:"body" json:"body"`
	Priority       Priority         `db:"priority" json:"priority"`
	RequiresAction bool             `db:"requires_action" json:"requires_action"`
	Data           JSONMap          `db:"data" json:"data"`
	ExpiresAt      *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	Delivered      bool             `db:"delivered" json:"delivered"`
	DeliveredAt    *time.Time       `db:"delivered_at" json:"delivered_at,omitempty"`
	Failed         bool             `db:"failed" json:"failed"`
	FailedAt       *time.Time       `db:"failed_at" json:"failed_at,omitempty"`
	Metadata       DeliveryMetadata `db:"metadata" json:"metadata"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the notification reached a final state.
func (n *Notification) Terminal() bool {
	return n.Delivered || n.Failed
}

// ExpiredAt reports whether the notification's delivery cutoff has passed.
func (n *Notification) ExpiredAt(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}
