package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/ideaflow/config"
	"github.com/spacesedan/ideaflow/internal/analysis"
	"github.com/spacesedan/ideaflow/internal/clients"
	"github.com/spacesedan/ideaflow/internal/clients/kafka_client"
	"github.com/spacesedan/ideaflow/internal/consumers"
	"github.com/spacesedan/ideaflow/internal/db"
	"github.com/spacesedan/ideaflow/internal/logging"
	"github.com/spacesedan/ideaflow/internal/monitoring"
	"github.com/spacesedan/ideaflow/internal/processing"
)

func main() {
	config.LoadEnv(config.AppEnvFromOS())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lexicon, err := analysis.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		slog.Error("[Main] Failed to load sentiment lexicon", slog.String("error", err.Error()))
		os.Exit(1)
	}

	kafkaCfg := kafka_client.NewKafkaConfig(cfg)

	var producer *kafka_client.ResultProducer
	for {
		producer, err = kafka_client.NewResultProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	valkey, err := clients.NewValkeyClient(cfg)
	if err != nil {
		slog.Error("[Main] Failed to connect to Valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer valkey.Close()

	dynamo, err := clients.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to create DynamoDB client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store := db.NewAnalysisStore(dynamo, cfg.AnalysesTable)

	clock := clockwork.NewRealClock()
	processor := processing.NewProcessor(lexicon, store, []processing.Publisher{producer, valkey}, clock, processing.Options{
		ModelVersion:    cfg.ModelVersion,
		VaderCrossCheck: cfg.VaderCrossCheck,
	})

	dependenciesHealthy := &atomic.Bool{}
	dependenciesHealthy.Store(true)
	monitor := monitoring.NewMonitor(clock, cfg.HealthcheckInterval, dependenciesHealthy,
		monitoring.HealthCheck{Name: "valkey", Check: valkey.Ping},
		monitoring.HealthCheck{Name: "dynamodb", Check: store.Ping},
	)
	go monitor.Run(ctx)

	requestConsumer := consumers.NewRequestConsumer(processor, valkey, cfg.RequestTimeout)

	registry := kafka_client.NewConsumerRegistry()
	registry.Register(kafkaCfg.RequestTopic, consumers.WrapConsumer(
		requestConsumer.Start).WithHealthCheck(dependenciesHealthy).Handler())

	if err := registry.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}
