package redisdriver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Driver struct {
	log    *slog.Logger
	rdb    *redis.Client
	prefix string
}

func New(log *slog.Logger, rdb *redis.Client, prefix string) *Driver {
	return &Driver{log: log, rdb: rdb, prefix: prefix}
}

func (d *Driver) key(name string) string {
	return d.prefix + name
}

func (d *Driver) Load(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, d.key(k))
	}

	vals, err := d.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("redis mget %s: unexpected value type %T", keys[i], v)
		}
		out[keys[i]] = []byte(s)
	}
	return out, nil
}

// Save writes all values inside MULTI/EXEC so a reader never sees half of an
// order placement.
func (d *Driver) Save(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	_, err := d.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, d.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis tx: %w", err)
	}
	d.log.Debug("redis save", "keys", len(values))
	return nil
}

func (d *Driver) Close() error {
	return d.rdb.Close()
}
