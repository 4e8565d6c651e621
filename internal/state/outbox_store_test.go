package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciferfruits/storefront/internal/storage/memorydriver"
	"github.com/luciferfruits/storefront/pkg/outbox"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newOutboxHolder(t *testing.T) (*Holder, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	h := NewHolder(testLog, memorydriver.New(), WithClock(c.Now))
	require.NoError(t, h.Load(context.Background()))
	return h, c
}

func emit(t *testing.T, h *Holder, n int) {
	t.Helper()
	require.NoError(t, h.Update(context.Background(), func(tx *Tx) error {
		for i := 0; i < n; i++ {
			if err := tx.Emit(context.Background(), "order", "1", "OrderPlaced", map[string]int{"n": i}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestEmitAppendsPendingEvents(t *testing.T) {
	h, _ := newOutboxHolder(t)
	emit(t, h, 2)

	h.View(func(d Data) {
		require.Len(t, d.Outbox, 2)
		assert.Equal(t, outbox.StatusPending, d.Outbox[0].Status)
		assert.Less(t, d.Outbox[0].ID, d.Outbox[1].ID)
		assert.Equal(t, "storefront", d.Outbox[0].Headers["source"])
		assert.JSONEq(t, `{"n":0}`, string(d.Outbox[0].Payload))
		assert.Equal(t, d.Outbox[1].ID, d.Meta.LastEventID)
	})
}

func TestEmitWithoutRelayKeepsOutboxEmpty(t *testing.T) {
	mem := memorydriver.New()
	h := NewHolder(testLog, mem, WithEvents(false))
	require.NoError(t, h.Load(context.Background()))

	for i := 0; i < 3; i++ {
		emit(t, h, 1)
	}
	h.View(func(d Data) {
		assert.Empty(t, d.Outbox)
		assert.Zero(t, d.Meta.LastEventID)
	})
	assert.NotContains(t, mem.Keys(), KeyOutbox)
}

func TestLockBatchLeasesAndSettles(t *testing.T) {
	h, c := newOutboxHolder(t)
	emit(t, h, 3)
	store := h.OutboxStore()
	ctx := context.Background()

	batch, err := store.LockBatch(ctx, "r1", 2, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// leased events are not handed out again until the lease runs out
	again, err := store.LockBatch(ctx, "r2", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, again, 1)

	require.NoError(t, store.MarkSent(ctx, []int64{batch[0].ID}))
	require.NoError(t, store.MarkFailed(ctx, batch[1].ID, "broker down"))

	h.View(func(d Data) {
		require.Len(t, d.Outbox, 2)
		assert.Equal(t, outbox.StatusFailed, d.Outbox[0].Status)
		assert.Equal(t, 1, d.Outbox[0].RetryCount)
		require.NotNil(t, d.Outbox[0].LastError)
		assert.Equal(t, "broker down", *d.Outbox[0].LastError)
	})

	c.now = c.now.Add(time.Minute)
	retry, err := store.LockBatch(ctx, "r1", 10, 5*time.Second)
	require.NoError(t, err)
	assert.Len(t, retry, 2)

	assert.Error(t, store.MarkSent(ctx, []int64{-1}))
}

func TestFailedEventsStopAfterMaxAttempts(t *testing.T) {
	h, _ := newOutboxHolder(t)
	emit(t, h, 1)
	store := h.OutboxStore()
	ctx := context.Background()

	var id int64
	h.View(func(d Data) { id = d.Outbox[0].ID })
	for i := 0; i < MaxDispatchAttempts; i++ {
		require.NoError(t, store.MarkFailed(ctx, id, "nope"))
	}
	batch, err := store.LockBatch(ctx, "r1", 10, time.Second)
	require.NoError(t, err)
	assert.Empty(t, batch)

	h.View(func(d Data) {
		assert.Empty(t, d.Outbox)
		assert.Equal(t, int64(1), d.Meta.DroppedEvents)
	})
}

func TestFailedEventStaysUntilLastAttempt(t *testing.T) {
	h, _ := newOutboxHolder(t)
	emit(t, h, 1)
	store := h.OutboxStore()
	ctx := context.Background()

	var id int64
	h.View(func(d Data) { id = d.Outbox[0].ID })
	require.NoError(t, store.MarkFailed(ctx, id, "broker down"))

	h.View(func(d Data) {
		require.Len(t, d.Outbox, 1)
		assert.Equal(t, 1, d.Outbox[0].RetryCount)
		assert.Equal(t, "broker down", *d.Outbox[0].LastError)
	})
	batch, err := store.LockBatch(ctx, "r1", 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}
