package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/luciferfruits/storefront/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher publishes outbox events to a single topic, keyed by aggregate so
// events for one order stay in partition order.
type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	if err := d.producer.WriteMessages(ctx, d.message(event)); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "type", event.Type, "err", err)
		return fmt.Errorf("publish event %d: %w", event.ID, err)
	}
	d.log.Debug("outbox dispatched", "event_id", event.ID, "type", event.Type, "topic", d.topic)
	return nil
}

func (d *Dispatcher) message(event Event) kafka.Message {
	headers := make([]kafka.Header, 0, len(event.Headers)+4)
	for _, k := range slices.Sorted(maps.Keys(event.Headers)) {
		headers = append(headers, header(k, event.Headers[k]))
	}
	headers = append(headers,
		header("event_type", event.Type),
		header("event_id", strconv.FormatInt(event.ID, 10)),
	)
	if event.AggregateType != "" {
		headers = append(headers, header("aggregate_type", event.AggregateType))
	}
	if event.Traceparent != "" {
		headers = append(headers, header(tracing.TraceparentHeader, event.Traceparent))
	}
	return kafka.Message{
		Topic:   d.topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
		Time:    event.CreatedAt,
	}
}

func header(k, v string) kafka.Header {
	return kafka.Header{Key: k, Value: []byte(v)}
}
