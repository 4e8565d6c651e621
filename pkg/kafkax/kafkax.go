package kafkax

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Brokers splits a comma separated KAFKA_ADDR value. An empty value yields
// no brokers, which callers treat as Kafka being disabled.
func Brokers(addr string) []string {
	var out []string
	for _, b := range strings.Split(addr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewWriter returns a writer without a fixed topic; every message names its own.
func NewWriter(log *slog.Logger, brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		ErrorLogger:            errorLogger(log),
	}
}

func NewReader(log *slog.Logger, brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		ErrorLogger: errorLogger(log),
	})
}

func errorLogger(log *slog.Logger) kafka.LoggerFunc {
	return func(msg string, args ...any) {
		log.Error("kafka", "detail", fmtArgs(msg, args))
	}
}

func fmtArgs(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
