package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-sensor-bridge/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/weather-sensor-bridge/internal/adapter/mqtt"
	redisadapter "github.com/couchcryptid/weather-sensor-bridge/internal/adapter/redis"
	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/decoder"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bridge failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	input, err := decoder.OpenInput(cfg.RTL433Input)
	if err != nil {
		return err
	}
	defer input.Close()

	dec, err := decoder.NewRTL433(input, decoder.RTL433Options{
		Buffer:  cfg.RTL433Buffer,
		Include: cfg.IncludeIDs,
		Exclude: cfg.ExcludeIDs,
	}, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(decoder.NewAdapter(dec), clockwork.NewRealClock(), logger, metrics, cfg.PollInterval)
	if cfg.FilterEnabled {
		p.SetFilterSensorID(cfg.FilterSensorID)
		logger.Info("identity filter enabled", "sensor_id", domain.FormatSensorID(cfg.FilterSensorID))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var state stateSinks
	if cfg.MQTTEnabled() {
		publisher, err := mqttadapter.Connect(cfg, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		state = publisher
	} else {
		logger.Info("mqtt sinks disabled")
	}
	attachSinks(p, cfg.MQTTFields, metrics, state)

	var snapshots httpadapter.SnapshotReader
	readiness := []sharedobs.ReadinessChecker{p}
	if cfg.RedisEnabled() {
		store, err := redisadapter.NewStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Subscribe(store.Record)
		snapshots = store
		readiness = append(readiness, store)
	} else {
		logger.Info("redis snapshots disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		pipeline.NewTrigger(writer, logger, metrics).Subscribe(p.Dispatcher())
		logger.Info("kafka trigger enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka trigger disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady(readiness...), snapshots, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start polling pipeline.
	runErr := make(chan error, 1)
	go func() {
		runErr <- p.Run(ctx)
	}()

	var pipelineErr error
	select {
	case <-ctx.Done():
		pipelineErr = <-runErr
	case pipelineErr = <-runErr:
		stop()
	}
	if pipelineErr != nil {
		logger.Error("pipeline error", "error", pipelineErr)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return pipelineErr
}
