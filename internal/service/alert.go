package service

import (
	"context"
	"log/slog"

	"github.com/duetapp/notify/internal/model"
)

// AdminAlert is the escalation payload emitted when retries are exhausted
// for a high or urgent notification.
type AdminAlert struct {
	NotificationID string
	RecipientID    string
	Type           string
	Priority       model.Priority
}

// AlertSink receives operational escalations. Implementations are external
// collaborators (pager, ops channel).
type AlertSink interface {
	Alert(ctx context.Context, a AdminAlert) error
}

type logAlertSink struct {
	log *slog.Logger
}

// NewLogAlertSink returns a sink that records escalations in the service log.
func NewLogAlertSink(log *slog.Logger) AlertSink {
	return &logAlertSink{log: log}
}

func (s *logAlertSink) Alert(ctx context.Context, a AdminAlert) error {
	s.log.WarnContext(ctx, "Delivery escalation",
		slog.String("notification_id", a.NotificationID),
		slog.String("recipient_id", a.RecipientID),
		slog.String("type", a.Type),
		slog.String("priority", string(a.Priority)),
	)
	return nil
}
