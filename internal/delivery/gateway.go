// Package delivery abstracts the channels a notification can be sent over.
// The pipeline depends on the Gateway interface only; concrete transports
// are external collaborators.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
)

// Channel identifies a delivery transport.
type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
)

// Gateway sends a notification over one channel.
type Gateway interface {
	Send(ctx context.Context, ch Channel, n *model.Notification) error
}

// Broadcaster publishes realtime messages to connected clients.
type Broadcaster interface {
	Publish(ctx context.Context, b model.Broadcast) error
}

// channelGateway multiplexes over the supported channels: realtime goes to
// the broadcaster, push and email are simulated pending the real provider
// integrations.
type channelGateway struct {
	broadcaster Broadcaster
	log         *slog.Logger
}

// NewGateway builds the default channel gateway.
func NewGateway(broadcaster Broadcaster, log *slog.Logger) Gateway {
	return &channelGateway{broadcaster: broadcaster, log: log}
}

func (g *channelGateway) Send(ctx context.Context, ch Channel, n *model.Notification) error {
	start := time.Now()
	var err error
	switch ch {
	case ChannelRealtime:
		err = g.broadcaster.Publish(ctx, model.Broadcast{
			Kind:        "notification",
			RecipientID: n.RecipientID,
			Title:       n.Title,
			Body:        n.Body,
			Priority:    n.Priority,
			Data:        n.Data,
			SentAt:      time.Now(),
		})
	case ChannelPush:
		err = g.simulate(ctx, ch, n)
	case ChannelEmail:
		err = g.simulate(ctx, ch, n)
	default:
		err = fmt.Errorf("unknown delivery channel %q", ch)
	}

	metrics.DeliveryDuration.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Deliveries.WithLabelValues(string(ch), "error").Inc()
		return err
	}
	metrics.Deliveries.WithLabelValues(string(ch), "success").Inc()
	return nil
}

// simulate stands in for the push and email providers.
func (g *channelGateway) simulate(ctx context.Context, ch Channel, n *model.Notification) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	g.log.Info("Simulating delivery",
		slog.String("channel", string(ch)),
		slog.String("notification_id", n.ID),
		slog.String("recipient_id", n.RecipientID),
	)
	return nil
}
