// Package testenv starts throwaway Postgres and Kafka containers for
// integration tests. Tests using it are skipped under -short or when no
// container runtime is reachable.
package testenv

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const startTimeout = 2 * time.Minute

// Postgres returns a connection URL for a fresh database.
func Postgres(t testing.TB) string {
	t.Helper()
	skipShort(t)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	return url
}

// Kafka returns the broker addresses of a single-node cluster.
func Kafka(t testing.TB) []string {
	t.Helper()
	skipShort(t)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("storefront-test"),
	)
	if err != nil {
		t.Skipf("kafka container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(kafkaC) })

	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}
	return brokers
}

func skipShort(t testing.TB) {
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
}
