package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	order "github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/internal/storage"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

// Holder owns the storefront collections. Reads see a consistent snapshot and
// every Update is persisted as one atomic driver write before it becomes
// visible, so memory and storage never disagree.
type Holder struct {
	mu     sync.Mutex
	log    *slog.Logger
	driver storage.Driver
	data   Data
	now    func() time.Time
	strict bool
	events bool
}

type Option func(*Holder)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

// WithStrictLoad makes Load fail on a malformed document instead of starting
// that collection empty.
func WithStrictLoad(strict bool) Option {
	return func(h *Holder) { h.strict = strict }
}

// WithEvents controls whether Emit records outbox events. Turn it off when no
// relay runs, otherwise the outbox grows with every order.
func WithEvents(enabled bool) Option {
	return func(h *Holder) { h.events = enabled }
}

func NewHolder(log *slog.Logger, driver storage.Driver, opts ...Option) *Holder {
	h := &Holder{log: log, driver: driver, now: time.Now, events: true}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Holder) Load(ctx context.Context) error {
	raw, err := h.driver.Load(ctx, AllKeys)
	if err != nil {
		return fmt.Errorf("%w: load: %v", apperr.ErrStorage, err)
	}

	var d Data
	var salvaged []string
	values := map[string][]byte{}
	for _, key := range AllKeys {
		b, ok := raw[key]
		if !ok || len(b) == 0 {
			continue
		}
		if err := d.decode(key, b); err != nil {
			if h.strict {
				return fmt.Errorf("%w: %s: %v", apperr.ErrFormat, key, err)
			}
			// The original document is kept next to the cleaned one.
			backup := BackupKey(key, h.now())
			values[backup] = b
			dropped := d.salvage(key, b)
			salvaged = append(salvaged, key)
			h.log.Warn("unreadable records dropped", "key", key, "dropped", dropped, "backup", backup, "err", err)
		}
	}

	dirty := append(salvaged, d.repair()...)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range dirty {
		b, err := d.encode(key)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", apperr.ErrStorage, key, err)
		}
		values[key] = b
	}
	if len(values) > 0 {
		if err := h.driver.Save(ctx, values); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
	}
	h.data = d
	h.log.Info("state loaded",
		"products", len(d.Products),
		"cart_items", len(d.Cart),
		"orders", len(d.Orders),
		"messages", len(d.Messages),
		"pending_events", len(d.Outbox))
	return nil
}

// repair assigns ids missing from legacy data and moves the counters past the
// highest id in use. It returns the keys it changed.
func (d *Data) repair() []string {
	var dirty []string
	for i := range d.Products {
		if d.Products[i].ID == "" {
			d.Products[i].EnsureID()
			if !slices.Contains(dirty, KeyProducts) {
				dirty = append(dirty, KeyProducts)
			}
		}
	}
	if d.advanceMeta() {
		dirty = append(dirty, KeyMeta)
	}
	return dirty
}

func (d *Data) advanceMeta() bool {
	changed := false
	for _, o := range d.Orders {
		if o.ID > d.Meta.LastOrderID {
			d.Meta.LastOrderID = o.ID
			changed = true
		}
	}
	for _, m := range d.Messages {
		if m.ID > d.Meta.LastMessageID {
			d.Meta.LastMessageID = m.ID
			changed = true
		}
	}
	for _, e := range d.Outbox {
		if e.ID > d.Meta.LastEventID {
			d.Meta.LastEventID = e.ID
			changed = true
		}
	}
	return changed
}

// View calls fn with the current snapshot. fn must not modify it; the
// collections are replaced wholesale by Update, so holding on to them after
// fn returns is safe.
func (h *Holder) View(fn func(d Data)) {
	h.mu.Lock()
	d := h.data
	h.mu.Unlock()
	fn(d)
}

// Update runs fn against a private copy of the state. When fn succeeds, the
// collections it touched are saved in one atomic write and the copy replaces
// the current state. Nothing changes if fn or the save fails.
func (h *Holder) Update(ctx context.Context, fn func(tx *Tx) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := &Tx{Data: h.data.clone(), Now: h.now(), events: h.events}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.dirty) == 0 {
		h.data = tx.Data
		return nil
	}

	values := make(map[string][]byte, len(tx.dirty))
	for _, key := range tx.dirty {
		b, err := tx.Data.encode(key)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", apperr.ErrStorage, key, err)
		}
		values[key] = b
	}
	if err := h.driver.Save(ctx, values); err != nil {
		h.log.Error("state save failed", "keys", tx.dirty, "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	h.data = tx.Data
	return nil
}

func (h *Holder) Close() error {
	return h.driver.Close()
}

// Tx is the working copy handed to Update callbacks.
type Tx struct {
	Data
	Now    time.Time
	dirty  []string
	events bool
}

// Touch marks collections as changed so Update persists them.
func (tx *Tx) Touch(keys ...string) {
	for _, k := range keys {
		if !slices.Contains(tx.dirty, k) {
			tx.dirty = append(tx.dirty, k)
		}
	}
}

// NextOrderID derives an id from the clock, bumped past the last one issued.
func (tx *Tx) NextOrderID() int64 {
	id := nextID(tx.Now, tx.Meta.LastOrderID)
	tx.Meta.LastOrderID = id
	tx.Touch(KeyMeta)
	return id
}

func (tx *Tx) NextMessageID() int64 {
	id := nextID(tx.Now, tx.Meta.LastMessageID)
	tx.Meta.LastMessageID = id
	tx.Touch(KeyMeta)
	return id
}

func nextID(now time.Time, last int64) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// FindOrder is a convenience for services that address orders by id.
func (tx *Tx) FindOrder(id int64) int {
	return order.FindIndex(tx.Orders, id)
}

// Reconcile assigns ids missing from replaced collections and moves the
// counters past the highest id now in use.
func (tx *Tx) Reconcile() {
	tx.Touch(tx.Data.repair()...)
}
