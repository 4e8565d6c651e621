// Package idempotency remembers which broker records were already handled so
// a redelivery after a crash or rebalance is skipped.
package idempotency

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "seen"

type Store struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: defaultPrefix, ttl: ttl}
}

// WithPrefix namespaces keys, e.g. per consumer group.
func (s *Store) WithPrefix(prefix string) *Store {
	s.prefix = prefix
	return s
}

// Key identifies a record by its position in the log.
func (s *Store) Key(topic string, partition int, offset int64) string {
	return strings.Join([]string{s.prefix, topic, strconv.Itoa(partition), strconv.FormatInt(offset, 10)}, ":")
}

// Seen claims key and reports whether an earlier caller already had it.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	claimed, err := s.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return !claimed, nil
}

// Forget releases key so a record whose handling failed can be redelivered.
func (s *Store) Forget(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
