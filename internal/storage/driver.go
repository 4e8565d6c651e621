// Package storage defines the key/value persistence port the state holder
// writes collections through.
package storage

import "context"

// Driver persists named JSON documents. Save must apply every key in the map
// atomically: either all values are written or none are.
type Driver interface {
	Load(ctx context.Context, keys []string) (map[string][]byte, error)
	Save(ctx context.Context, values map[string][]byte) error
	Close() error
}
