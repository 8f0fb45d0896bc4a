package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/pkg/tracing"
)

// EventHandler routes ingested check-in events into the pipeline.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev model.Event) error
}

// Consumer consumes check-in events from Kafka using a consumer group.
type Consumer struct {
	topic         string
	handler       EventHandler
	consumerGroup sarama.ConsumerGroup
	tracer        *tracing.Tracer
	log           *slog.Logger
}

// NewConsumer constructs a Kafka consumer; the consumer group is injected.
func NewConsumer(
	topic string,
	consumerGroup sarama.ConsumerGroup,
	handler EventHandler,
	tracer *tracing.Tracer,
	log *slog.Logger,
) *Consumer {
	return &Consumer{
		topic:         topic,
		consumerGroup: consumerGroup,
		handler:       handler,
		tracer:        tracer,
		log:           log,
	}
}

// Start blocks consuming the events topic until the context is cancelled or
// the group is closed. Transient consume errors back off exponentially.
func (c *Consumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumerGroup.Close(); err != nil {
			c.log.Warn("Failed to close consumer group", slog.Any("error", err))
		}
	}()

	c.log.Info("Event consumer started", slog.String("topic", c.topic))

	backoff := 1 * time.Second
	for {
		err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
		if err != nil {
			c.log.Error("Error consuming events", slog.Any("error", err))

			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}

			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		if ctx.Err() != nil {
			c.log.Info("Context cancelled, stopping consumer")
			return ctx.Err()
		}
	}
}

// Setup is called once when a new consumer session starts.
func (c *Consumer) Setup(session sarama.ConsumerGroupSession) error {
	for topic, partitions := range session.Claims() {
		c.log.Info("Partition assignment",
			slog.String("topic", topic),
			slog.Any("partitions", partitions),
		)
	}
	return nil
}

// Cleanup is called once when the consumer session ends.
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	c.log.Info("Consumer session cleanup complete")
	return nil
}

// ConsumeClaim processes the messages of one assigned partition. Malformed
// messages are logged and skipped; handler errors leave the offset
// uncommitted so the event is redelivered.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		ctx := tracing.ExtractTraceContext(session.Context(), message.Headers)
		ctx, span := c.tracer.StartConsumerSpan(ctx, "HandleEvent")
		c.tracer.AddKafkaAttributes(span, message.Topic, "consume", message.Partition, message.Offset)

		var ev model.Event
		if err := json.Unmarshal(message.Value, &ev); err != nil {
			c.log.Error("Failed to decode event", slog.Any("error", err))
			c.tracer.RecordError(span, err)
			span.End()
			session.MarkMessage(message, "")
			continue
		}

		if err := c.handler.HandleEvent(ctx, ev); err != nil {
			c.log.Error("Event handling failed",
				slog.String("kind", string(ev.Kind)),
				slog.String("couple_id", ev.CoupleID),
				slog.Any("error", err))
			c.tracer.RecordError(span, err)
			span.End()
			continue
		}

		span.End()
		session.MarkMessage(message, "")
	}
	return nil
}
