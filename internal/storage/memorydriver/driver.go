package memorydriver

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("memory driver closed")

// Driver keeps documents in process memory. Values are copied on the way in and
// out so callers cannot alias stored bytes.
type Driver struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *Driver {
	return &Driver{data: make(map[string][]byte)}
}

func (d *Driver) Load(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := d.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (d *Driver) Save(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	for k, v := range values {
		d.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Keys lists stored keys; used by tests to inspect what was persisted.
func (d *Driver) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	return keys
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
