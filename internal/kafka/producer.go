package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/pkg/tracing"
)

// BroadcastProducer publishes realtime broadcast messages. It implements
// delivery.Broadcaster.
type BroadcastProducer interface {
	Start(ctx context.Context)
	Publish(ctx context.Context, b model.Broadcast) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            *sync.WaitGroup
	closeOnce     sync.Once
	tracer        *tracing.Tracer
}

// NewProducer wires an async producer for the broadcast topic.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, wg *sync.WaitGroup, tracer *tracing.Tracer) BroadcastProducer {
	if asyncProducer == nil || log == nil || wg == nil || tracer == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log,
		wg:            wg,
		tracer:        tracer,
	}
}

// Start launches background handlers for the success and error channels.
func (p *producer) Start(ctx context.Context) {
	p.log.Info("Starting broadcast producer handlers")
	p.wg.Add(2)
	go p.handleSuccess(ctx)
	go p.handleErrors(ctx)
}

func (p *producer) handleSuccess(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.asyncProducer.Successes():
			if !ok {
				p.log.Info("Broadcast successes channel closed")
				return
			}
			key, _ := msg.Key.Encode()
			p.log.Debug("Broadcast delivered",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("key", string(key)))
		case <-ctx.Done():
			p.log.Info("Broadcast success handler stopped by context")
			return
		}
	}
}

func (p *producer) handleErrors(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case err, ok := <-p.asyncProducer.Errors():
			if !ok {
				p.log.Info("Broadcast errors channel closed")
				return
			}
			p.log.Error("Broadcast delivery failed",
				slog.String("topic", err.Msg.Topic),
				slog.Any("error", err.Err))
		case <-ctx.Done():
			p.log.Info("Broadcast error handler stopped by context")
			return
		}
	}
}

// Publish queues a broadcast message with trace-context headers.
func (p *producer) Publish(ctx context.Context, b model.Broadcast) error {
	ctx, span := p.tracer.StartClientSpan(ctx, "BroadcastPublish")
	defer span.End()

	data, err := json.Marshal(b)
	if err != nil {
		p.tracer.RecordError(span, err)
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	key := b.RecipientID
	if key == "" {
		key = b.CoupleID
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers:   tracing.InjectTraceContext(ctx, nil),
	}

	select {
	case p.asyncProducer.Input() <- msg:
		span.SetAttributes(
			attribute.String(tracing.AttrMessagingDestination, p.topic),
			attribute.String("broadcast.kind", b.Kind),
		)
		return nil
	case <-ctx.Done():
		p.log.Warn("Broadcast publish cancelled by context",
			slog.String("key", key))
		p.tracer.RecordError(span, ctx.Err())
		return ctx.Err()
	}
}

// Close shuts down the producer and waits for its handlers.
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing broadcast producer...")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Broadcast producer closed")
	})
}
