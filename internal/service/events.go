package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duetapp/notify/internal/model"
)

// EventProcessor routes ingested check-in events to the right pipeline
// stage: metric snapshots feed the milestone detector, direct notification
// events go straight to fan-out. It implements kafka.EventHandler.
type EventProcessor struct {
	dispatcher Dispatcher
	detector   Detector
	groups     []model.RuleGroup
	combos     []model.ComboRule
	log        *slog.Logger
}

// NewEventProcessor wires the processor with an explicit rule configuration
// rather than process-wide state, so detection stays independently testable.
func NewEventProcessor(
	dispatcher Dispatcher,
	detector Detector,
	groups []model.RuleGroup,
	combos []model.ComboRule,
	log *slog.Logger,
) *EventProcessor {
	return &EventProcessor{
		dispatcher: dispatcher,
		detector:   detector,
		groups:     groups,
		combos:     combos,
		log:        log,
	}
}

// HandleEvent dispatches one event. Unknown kinds are logged and dropped so
// a bad producer cannot wedge the partition.
func (p *EventProcessor) HandleEvent(ctx context.Context, ev model.Event) error {
	switch ev.Kind {
	case model.EventMetricsSnapshot:
		if ev.CoupleID == "" {
			return fmt.Errorf("metrics snapshot without couple_id")
		}
		_, err := p.detector.Detect(ctx, ev.CoupleID, ev.Members, ev.Metrics, p.groups, p.combos)
		return err
	case model.EventNotification:
		notifType := ev.Type
		if notifType == "" {
			notifType = model.TypeCheckin
		}
		_, err := p.dispatcher.FanOut(ctx, FanOutRequest{
			Recipients:     ev.Recipients,
			Type:           notifType,
			Category:       ev.Category,
			Title:          ev.Title,
			Body:           ev.Body,
			Priority:       ev.Priority,
			RequiresAction: ev.RequiresAction,
			Data:           ev.Data,
		})
		return err
	default:
		p.log.WarnContext(ctx, "Dropping event of unknown kind",
			slog.String("kind", string(ev.Kind)))
		return nil
	}
}
