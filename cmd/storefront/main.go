package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	backupapp "github.com/luciferfruits/storefront/internal/backup/application"
	backuphttp "github.com/luciferfruits/storefront/internal/backup/infrastructure/http"
	cartapp "github.com/luciferfruits/storefront/internal/cart/application"
	carthttp "github.com/luciferfruits/storefront/internal/cart/infrastructure/http"
	catalogapp "github.com/luciferfruits/storefront/internal/catalog/application"
	cataloghttp "github.com/luciferfruits/storefront/internal/catalog/infrastructure/http"
	"github.com/luciferfruits/storefront/internal/config"
	lookupapp "github.com/luciferfruits/storefront/internal/lookup/application"
	lookuphttp "github.com/luciferfruits/storefront/internal/lookup/infrastructure/http"
	"github.com/luciferfruits/storefront/internal/lookup/infrastructure/remote"
	messageapp "github.com/luciferfruits/storefront/internal/message/application"
	messagehttp "github.com/luciferfruits/storefront/internal/message/infrastructure/http"
	messagekafka "github.com/luciferfruits/storefront/internal/message/infrastructure/kafka"
	orderapp "github.com/luciferfruits/storefront/internal/order/application"
	orderhttp "github.com/luciferfruits/storefront/internal/order/infrastructure/http"
	"github.com/luciferfruits/storefront/internal/server"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/internal/storage"
	"github.com/luciferfruits/storefront/internal/storage/memorydriver"
	"github.com/luciferfruits/storefront/internal/storage/pgdriver"
	"github.com/luciferfruits/storefront/internal/storage/redisdriver"
	"github.com/luciferfruits/storefront/pkg/idempotency"
	"github.com/luciferfruits/storefront/pkg/kafkax"
	"github.com/luciferfruits/storefront/pkg/logging"
	"github.com/luciferfruits/storefront/pkg/outbox"
	"github.com/luciferfruits/storefront/pkg/shutdown"
	"github.com/luciferfruits/storefront/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "storefront", cfg.OTELEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Redis backs the idempotency store even when state lives elsewhere.
	var rdb *redis.Client
	if cfg.StorageDriver == config.DriverRedis || cfg.KafkaAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	driver, err := openDriver(ctx, log, cfg, rdb)
	if err != nil {
		log.Error("storage open failed", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}

	gs, hs, err := server.RunGRPC(log, cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	brokers := kafkax.Brokers(cfg.KafkaAddr)
	holder := state.NewHolder(log, driver,
		state.WithStrictLoad(cfg.StrictLoad),
		state.WithEvents(len(brokers) > 0),
	)
	if err := holder.Load(ctx); err != nil {
		log.Error("state load failed", "err", err)
		os.Exit(1)
	}
	var ready atomic.Bool
	ready.Store(true)
	server.SetServing(hs, true)

	catalogSvc := catalogapp.NewService(log, holder)
	cartSvc := cartapp.NewService(log, holder)
	orderSvc := orderapp.NewService(log, holder)
	messageSvc := messageapp.NewService(log, holder)
	backupSvc := backupapp.NewService(log, holder)

	var primary lookupapp.Primary
	if cfg.LookupURL != "" {
		primary = remote.NewClient(cfg.LookupURL)
	}
	lookupSvc := lookupapp.NewService(log, primary, orderSvc, cfg.LookupTimeout)

	catalogH := cataloghttp.NewHandler(log, catalogSvc)
	orderH := orderhttp.NewHandler(log, orderSvc)
	messageH := messagehttp.NewHandler(log, messageSvc)
	router := server.NewRouter(log, server.Options{
		AdminPassword: cfg.AdminPassword,
		CORSOrigins:   cfg.CORSOrigins,
		Ready:         ready.Load,
		Public: []server.PublicRoutes{
			catalogH,
			carthttp.NewHandler(log, cartSvc),
			lookuphttp.NewHandler(log, lookupSvc),
			orderH,
			messageH,
		},
		Admin: []server.AdminRoutes{
			catalogH,
			orderH,
			messageH,
			backuphttp.NewHandler(log, backupSvc),
		},
	})

	workers := shutdown.NewWorkers(log)
	if len(brokers) > 0 {
		writer := kafkax.NewWriter(log, brokers)
		defer writer.Close()

		dispatch := outbox.NewDispatcher(log, writer, cfg.EventsTopic)
		relay := outbox.NewRelay(log, holder.OutboxStore(), dispatch, "storefront-relay")
		workers.Go("outbox-relay", func() error { return relay.Run(ctx) })

		idem := idempotency.NewStore(rdb, 24*time.Hour).WithPrefix(cfg.RedisPrefix + "seen")
		reader := kafkax.NewReader(log, brokers, cfg.ContactTopic, "storefront")
		consumer := messagekafka.NewConsumer(log, reader, messageSvc, idem)
		workers.Go("contact-consumer", func() error { return consumer.Run(ctx) })
	} else {
		log.Info("kafka disabled, no events are recorded")
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	ready.Store(false)
	server.SetServing(hs, false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	if !workers.Wait(10 * time.Second) {
		log.Warn("background workers still running at shutdown")
	}

	if err := holder.Close(); err != nil {
		log.Error("storage close failed", "err", err)
	}
	if rdb != nil && cfg.StorageDriver != config.DriverRedis {
		_ = rdb.Close()
	}
	log.Info("storefront shutdown complete")
}

func openDriver(ctx context.Context, log *slog.Logger, cfg config.Config, rdb *redis.Client) (storage.Driver, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn("memory storage selected, state is lost on exit")
		return memorydriver.New(), nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PGURL)
		if err != nil {
			return nil, err
		}
		return pgdriver.New(ctx, log, pool)
	default:
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return redisdriver.New(log, rdb, cfg.RedisPrefix), nil
	}
}
