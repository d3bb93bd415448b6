package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/journal"
	"github.com/segmentio/kafka-go"
)

const (
	SaleCompletedTopic = "sale-completed"

	batchSize = 100
)

type EventStore interface {
	UnpublishedEvents(ctx context.Context, limit int) ([]journal.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}

// EventWriter is satisfied by *kafka.Writer.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller relays journaled sale events to Kafka. Delivery is at least
// once: an event whose mark fails is sent again on the next tick.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	store     EventStore
	writer    EventWriter
	logger    *slog.Logger
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  SaleCompletedTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(store EventStore, writer EventWriter, logger *slog.Logger) *OutboxPoller {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: time.Second,
		store:     store,
		writer:    writer,
		logger:    logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.eventTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublishedEvents returns how many events were published and marked.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	events, err := p.store.UnpublishedEvents(ctx, batchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return 0
	}

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event", "event_id", event.ID, "error", err)
			continue
		}
		if err := p.store.MarkPublished(ctx, event.ID); err != nil {
			p.logger.ErrorContext(ctx, "failed to mark event as published", "event_id", event.ID, "error", err)
			continue
		}
		published++
	}
	return published
}

func (p *OutboxPoller) publish(ctx context.Context, event journal.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // receipt id
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}
