package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luciferfruits/storefront/internal/message/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
	"github.com/luciferfruits/storefront/pkg/idempotency"
	"github.com/luciferfruits/storefront/pkg/tracing"
)

type MessageAdder interface {
	Add(ctx context.Context, orderID int64, name, email, text string) (domain.Message, error)
}

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer stores contact form submissions published by the functions
// service as customer messages.
type Consumer struct {
	log    *slog.Logger
	reader Reader
	svc    MessageAdder
	idem   *idempotency.Store
	tracer trace.Tracer
	retry  backoff.BackOff
}

func NewConsumer(log *slog.Logger, reader Reader, svc MessageAdder, idem *idempotency.Store) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("message-consumer"),
		retry: &backoff.ExponentialBackOff{
			InitialInterval:     500 * time.Millisecond,
			RandomizationFactor: 0.5,
			Multiplier:          2,
			MaxInterval:         30 * time.Second,
		},
	}
}

// WithBackOff replaces the delay policy between attempts at a failing record.
func (c *Consumer) WithBackOff(b backoff.BackOff) *Consumer {
	c.retry = b
	return c
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		// A later commit on the partition would skip this offset, so a
		// failing record blocks the partition until it is stored.
		if err := c.handleUntilDone(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) handleUntilDone(ctx context.Context, msg kafka.Message) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.Handle(ctx, msg)
	},
		backoff.WithBackOff(c.retry),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn("retrying contact message", "offset", msg.Offset, "next", next, "err", err)
		}),
	)
	return err
}

// Handle processes one record. It returns an error only when the record should
// be retried; malformed or invalid records are logged and dropped.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "err", err)
		return err
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return nil
	}

	if et := tracing.HeaderValue(msg.Headers, "event_type"); et != "" && et != domain.EventContactMessageReceived {
		c.log.Debug("ignoring foreign event", "event_type", et, "offset", msg.Offset)
		return nil
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeContactMessage")
	defer span.End()

	var ev domain.ContactMessageReceived
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.Error("unmarshal failed", "offset", msg.Offset, "err", err)
		return nil
	}
	span.SetAttributes(attribute.Int64("order.id", int64(ev.OrderID)))

	m, err := c.svc.Add(msgCtx, int64(ev.OrderID), ev.Name, ev.Email, ev.Message)
	switch {
	case err == nil:
		c.log.Info("contact message stored", "message_id", m.ID, "order_id", int64(ev.OrderID))
		return nil
	case errors.Is(err, apperr.ErrValidation):
		c.log.Warn("contact message rejected", "offset", msg.Offset, "err", err)
		return nil
	default:
		span.RecordError(err)
		c.log.Error("contact message not stored", "offset", msg.Offset, "err", err)
		if ferr := c.idem.Forget(ctx, key); ferr != nil {
			c.log.Error("idempotency release failed", "key", key, "err", ferr)
		}
		return err
	}
}
