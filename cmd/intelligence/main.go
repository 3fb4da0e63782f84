package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/ideaflow/config"
	"github.com/spacesedan/ideaflow/internal/analysis"
	"github.com/spacesedan/ideaflow/internal/clients"
	"github.com/spacesedan/ideaflow/internal/db"
	"github.com/spacesedan/ideaflow/internal/logging"
	"github.com/spacesedan/ideaflow/internal/monitoring"
	"github.com/spacesedan/ideaflow/internal/processing"
	"github.com/spacesedan/ideaflow/internal/server"
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
	processor := processing.NewProcessor(lexicon, store, []processing.Publisher{valkey}, clock, processing.Options{
		ModelVersion:    cfg.ModelVersion,
		VaderCrossCheck: cfg.VaderCrossCheck,
	})

	ready := &atomic.Bool{}
	monitor := monitoring.NewMonitor(clock, cfg.HealthcheckInterval, ready,
		monitoring.HealthCheck{Name: "valkey", Check: valkey.Ping},
		monitoring.HealthCheck{Name: "dynamodb", Check: store.Ping},
	)
	go monitor.Run(ctx)

	srv := server.NewServer(cfg.Addr, processor, store, ready, cfg.RequestTimeout)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Server shutdown failed", slog.String("error", err.Error()))
	}
}
