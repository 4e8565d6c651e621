package state

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciferfruits/storefront/internal/storage/memorydriver"
	"github.com/luciferfruits/storefront/internal/testenv"
	"github.com/luciferfruits/storefront/pkg/kafkax"
	"github.com/luciferfruits/storefront/pkg/outbox"
)

func TestRelayPublishesToKafka(t *testing.T) {
	brokers := testenv.Kafka(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	h := NewHolder(testLog, memorydriver.New())
	require.NoError(t, h.Load(ctx))
	require.NoError(t, h.Update(ctx, func(tx *Tx) error {
		return tx.Emit(ctx, "order", "77", "OrderPlaced", map[string]int64{"orderId": 77})
	}))

	writer := kafkax.NewWriter(testLog, brokers)
	defer writer.Close()
	relay := outbox.NewRelay(testLog, h.OutboxStore(), outbox.NewDispatcher(testLog, writer, "storefront.events"), "test-relay")

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	h.View(func(d Data) { assert.Empty(t, d.Outbox) })

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: "storefront.events", Partition: 0})
	defer reader.Close()
	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "77", string(msg.Key))
	assert.JSONEq(t, `{"orderId":77}`, string(msg.Value))
}
