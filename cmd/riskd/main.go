package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/risk-service/internal/application/usecase"
	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/internal/infrastructure/config"
	infrakafka "github.com/bibbank/risk-service/internal/infrastructure/kafka"
	"github.com/bibbank/risk-service/internal/infrastructure/llm"
	"github.com/bibbank/risk-service/internal/infrastructure/memory"
	"github.com/bibbank/risk-service/internal/infrastructure/messaging"
	"github.com/bibbank/risk-service/internal/infrastructure/ml"
	infrapostgres "github.com/bibbank/risk-service/internal/infrastructure/postgres"
	"github.com/bibbank/risk-service/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/risk-service/internal/presentation/grpc"
	"github.com/bibbank/risk-service/internal/presentation/rest"
	"github.com/bibbank/risk-service/pkg/kafka"
	"github.com/bibbank/risk-service/pkg/observability"
	"github.com/bibbank/risk-service/pkg/postgres"
)

const serviceName = "risk-service"

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: serviceName,
		Environment: cfg.Environment,
	})
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("risk-service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting risk-service",
		"version", version,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer shutdownTracer(context.Background()) //nolint:errcheck
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background()) //nolint:errcheck

	scoringMetrics, err := telemetry.NewScoringMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("init scoring metrics: %w", err)
	}

	riskModel, err := ml.LoadModel(cfg.ModelPath, logger)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	var summarizer port.Summarizer = llm.DisabledSummarizer{}
	if cfg.SummarizerEnabled() {
		summarizer = llm.NewGeminiSummarizer(llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		}, logger)
		logger.Info("summarizer enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("summarizer disabled (no GEMINI_API_KEY set)")
	}

	publisher, closePublisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	readiness := map[string]rest.ReadinessCheck{}
	opts := []usecase.ScoreOption{
		usecase.WithMetrics(scoringMetrics),
		usecase.WithSummaryTimeout(cfg.SummaryTimeout),
	}

	if cfg.DatabaseURL != "" {
		pool, err := openArchive(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		opts = append(opts, usecase.WithArchive(infrapostgres.NewScoreArchive(pool)))
		readiness["database"] = func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, pool)
		}
	} else {
		logger.Info("score archive disabled (no DATABASE_URL set)")
	}

	// History is in-process only and starts empty on every boot.
	history := memory.NewHistoryStore(cfg.HistoryMaxPerUser)
	historyGauges, err := telemetry.RegisterHistoryGauges(meterProvider, history)
	if err != nil {
		return fmt.Errorf("init history metrics: %w", err)
	}
	defer historyGauges.Unregister() //nolint:errcheck

	scoreTransactionUC := usecase.NewScoreTransaction(history, riskModel, riskModel, summarizer, publisher, logger, opts...)
	scoreBatchUC := usecase.NewScoreBatch(scoreTransactionUC, cfg.BatchWorkers, logger)
	getRiskHistoryUC := usecase.NewGetRiskHistory(history)
	resetHistoryUC := usecase.NewResetHistory(history, logger)

	grpcHandler := grpcpresentation.NewRiskServiceHandler(scoreTransactionUC, getRiskHistoryUC, resetHistoryUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.Environment == config.DefaultEnvironment,
	}, logger)
	if err != nil {
		return err
	}

	riskHandler := rest.NewRiskHandler(scoreTransactionUC, scoreBatchUC, getRiskHistoryUC, resetHistoryUC, logger)
	healthHandler := rest.NewHealthHandler(readiness, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           rest.NewRouter(riskHandler, healthHandler, metricsHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		// Scoring waits on the summarizer, and uploads may be large.
		WriteTimeout: cfg.SummaryTimeout + 50*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("risk-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	logger.Info("shutting down risk-service")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("risk-service stopped")
	return serveErr
}

// newEventPublisher returns the Kafka publisher when brokers are configured
// and the log publisher otherwise, together with its cleanup.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("event publishing to log (no KAFKA_BROKERS set)")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	producer, err := kafka.NewProducer(kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		TLS:           cfg.KafkaTLS,
		SASLMechanism: cfg.KafkaSASLMechanism,
		SASLUsername:  cfg.KafkaSASLUsername,
		SASLPassword:  cfg.KafkaSASLPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Info("event publishing to kafka",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.EventsTopic,
	)

	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", "error", err)
		}
	}
	return infrakafka.NewPublisher(producer, cfg.EventsTopic, logger), closeFn, nil
}

// openArchive connects to Postgres and applies the archive migrations.
func openArchive(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if err := postgres.RunMigrations(infrapostgres.Migrations, infrapostgres.MigrationsDir, databaseURL); err != nil {
		return nil, fmt.Errorf("archive migrations: %w", err)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := postgres.NewPool(dbCtx, postgres.Config{URL: databaseURL})
	if err != nil {
		return nil, fmt.Errorf("connect to archive database: %w", err)
	}
	logger.Info("score archive enabled")
	return pool, nil
}
