package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/luciferfruits/storefront/internal/config"
	"github.com/luciferfruits/storefront/internal/functions"
	messagekafka "github.com/luciferfruits/storefront/internal/message/infrastructure/kafka"
	"github.com/luciferfruits/storefront/pkg/kafkax"
	"github.com/luciferfruits/storefront/pkg/logging"
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

	tp, err := tracing.Init(ctx, "storefront-functions", cfg.OTELEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var publisher functions.ContactPublisher
	if brokers := kafkax.Brokers(cfg.KafkaAddr); len(brokers) > 0 {
		writer := kafkax.NewWriter(log, brokers)
		defer writer.Close()
		publisher = messagekafka.NewPublisher(writer, cfg.ContactTopic)
	}

	handler := functions.NewHandler(log, publisher)
	srv := &http.Server{
		Addr:         cfg.FunctionsAddr,
		Handler:      otelhttp.NewHandler(handler.Routes(), "functions"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("functions listening", "addr", cfg.FunctionsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("functions shutdown complete")
}
