package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/luciferfruits/storefront/internal/message/domain"
	"github.com/luciferfruits/storefront/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher sends contact form submissions to the contact topic.
type Publisher struct {
	producer Producer
	topic    string
}

func NewPublisher(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) PublishContact(ctx context.Context, ev domain.ContactMessageReceived) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	headers := []kafka.Header{{Key: "event_type", Value: []byte(domain.EventContactMessageReceived)}}
	return p.producer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(strconv.FormatInt(int64(ev.OrderID), 10)),
		Value:   b,
		Headers: tracing.InjectKafkaHeaders(ctx, headers),
	})
}
