package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/luciferfruits/storefront/pkg/outbox"
	"github.com/luciferfruits/storefront/pkg/tracing"
)

// MaxDispatchAttempts bounds how often a failed event is handed back to a relay.
const MaxDispatchAttempts = 5

// Emit records an event in the same transaction as the state change it
// describes; the relay publishes it later. It does nothing when the holder
// was built without events.
func (tx *Tx) Emit(ctx context.Context, aggregateType, aggregateID, eventType string, payload any) error {
	if !tx.events {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	tx.Meta.LastEventID = nextID(tx.Now, tx.Meta.LastEventID)
	tx.Outbox = append(tx.Outbox, outbox.Event{
		ID:            tx.Meta.LastEventID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       b,
		Headers:       map[string]string{"source": "storefront"},
		Traceparent:   tracing.Traceparent(ctx),
		CreatedAt:     tx.Now.UTC(),
		Status:        outbox.StatusPending,
	})
	tx.Touch(KeyOutbox, KeyMeta)
	return nil
}

// OutboxStore lets the outbox relay lease and settle events kept in the
// state holder.
type OutboxStore struct {
	h *Holder
}

func (h *Holder) OutboxStore() *OutboxStore {
	return &OutboxStore{h: h}
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	var events []outbox.Event
	err := s.h.Update(ctx, func(tx *Tx) error {
		for i := range tx.Outbox {
			if len(events) >= batchSize {
				break
			}
			ev := &tx.Outbox[i]
			if !ev.Claimable(tx.Now, MaxDispatchAttempts) {
				continue
			}
			ev.Status = outbox.StatusInProgress
			ev.RelayID = relayID
			ev.LeaseUntil = tx.Now.Add(lease)
			events = append(events, *ev)
		}
		if len(events) > 0 {
			tx.Touch(KeyOutbox)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkSent drops delivered events; nothing reads them afterwards.
func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	return s.h.Update(ctx, func(tx *Tx) error {
		before := len(tx.Outbox)
		tx.Outbox = slices.DeleteFunc(tx.Outbox, func(e outbox.Event) bool {
			return slices.Contains(ids, e.ID)
		})
		if len(tx.Outbox) == before {
			return errors.New("no rows updated")
		}
		tx.Touch(KeyOutbox)
		return nil
	})
}

// MarkFailed records a failed attempt. An event that has used all of its
// attempts is removed and counted in meta.
func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	var dropped *outbox.Event
	err := s.h.Update(ctx, func(tx *Tx) error {
		i := slices.IndexFunc(tx.Outbox, func(e outbox.Event) bool { return e.ID == id })
		if i < 0 {
			return fmt.Errorf("outbox event %d not found", id)
		}
		msg := errMsg
		ev := tx.Outbox[i]
		ev.Status = outbox.StatusFailed
		ev.RetryCount++
		ev.LastError = &msg
		tx.Touch(KeyOutbox)
		if ev.RetryCount < MaxDispatchAttempts {
			tx.Outbox[i] = ev
			return nil
		}
		tx.Outbox = slices.Delete(tx.Outbox, i, i+1)
		tx.Meta.DroppedEvents++
		tx.Touch(KeyMeta)
		dropped = &ev
		return nil
	})
	if err == nil && dropped != nil {
		s.h.log.Error("outbox event dropped",
			"event_id", dropped.ID,
			"type", dropped.Type,
			"aggregate_id", dropped.AggregateID,
			"attempts", dropped.RetryCount,
			"err", errMsg)
	}
	return err
}

func (s *OutboxStore) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	return s.h.Update(ctx, func(tx *Tx) error {
		for i := range tx.Outbox {
			ev := &tx.Outbox[i]
			if ev.RelayID == relayID && slices.Contains(ids, ev.ID) {
				ev.LeaseUntil = tx.Now.Add(lease)
				tx.Touch(KeyOutbox)
			}
		}
		return nil
	})
}
