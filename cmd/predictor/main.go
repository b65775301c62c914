package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rain-predict-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/rain-predict-service/internal/adapter/kafka"
	"github.com/couchcryptid/rain-predict-service/internal/config"
	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/model"
	"github.com/couchcryptid/rain-predict-service/internal/observability"
	"github.com/couchcryptid/rain-predict-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

// readinessChain is ready when every checker is ready.
type readinessChain []sharedobs.ReadinessChecker

func (c readinessChain) CheckReadiness(ctx context.Context) error {
	for _, r := range c {
		if err := r.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loaded, err := model.Load(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model artifact", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	if cfg.ModelSchemaFingerprint != "" {
		if err := model.VerifyFingerprint(loaded.Schema, cfg.ModelSchemaFingerprint); err != nil {
			logger.Error("model schema does not match pinned fingerprint", "error", err)
			os.Exit(1)
		}
	}

	engine := domain.NewEngine(loaded.Schema, domain.DefaultVocabulary(), loaded.Classifier, loaded.Info)
	metrics.ModelInfo.WithLabelValues(loaded.Info.Version, engine.Fingerprint()).Set(1)
	logger.Info("model loaded",
		"path", cfg.ModelPath,
		"version", loaded.Info.Version,
		"kind", loaded.Info.Kind,
		"columns", loaded.Schema.Len(),
		"fingerprint", engine.Fingerprint(),
	)

	ready := readinessChain{engine}

	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(engine, metrics, logger)
		p = pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
		logger.Info("kafka pipeline enabled", "source", cfg.KafkaSourceTopic, "sink", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, engine, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start prediction pipeline.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
