// Command worker consumes document-ingested events and runs the analysis
// pipeline asynchronously, persisting results and publishing completion
// events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/config"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/storage/minio"
)

// Build-time variable injected via ldflags.
var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logger.Info("starting RegGap-Intelligence analysis worker",
		logging.String("version", version),
		logging.Int("concurrency", cfg.Worker.Concurrency))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgConn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pgConn.Close()
	documentRepo := pgrepos.NewDocumentRepository(pgConn.Pool(), logger)

	minioClient, err := minio.NewMinIOClient(minioConfig(cfg.MinIO), logger)
	if err != nil {
		return fmt.Errorf("minio connection failed: %w", err)
	}
	defer minioClient.Close()
	artifacts := minio.NewArtifactStore(minioClient, minio.NewMinIORepository(minioClient, logger))

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka producer failed: %w", err)
	}
	defer producer.Close()

	service := analysis.NewService(logger,
		analysis.WithConcurrency(cfg.Worker.Concurrency),
		analysis.WithEventPublisher(kafka.NewEventPublisher(producer, logger)))

	worker := &analysisWorker{
		service:   service,
		artifacts: artifacts,
		documents: documentRepo,
		logger:    logger.Named("analysis_worker"),
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topics:          []string{kafka.TopicDocumentIngested},
		AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoffMS,
			DeadLetterTopic: kafka.TopicDeadLetter,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer failed: %w", err)
	}
	defer consumer.Close()

	consumer.Subscribe(kafka.TopicDocumentIngested, worker.handleDocumentIngested)
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("consumer start failed: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

// analysisWorker processes one ingested document per message: it fetches
// the stored text, runs the single-document pipeline, and persists the
// result.
type analysisWorker struct {
	service   *analysis.Service
	artifacts *minio.ArtifactStore
	documents *pgrepos.DocumentRepository
	logger    logging.Logger
}

func (w *analysisWorker) handleDocumentIngested(ctx context.Context, msg *kafka.Message) error {
	var envelope kafka.EventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("malformed event envelope: %w", err)
	}
	var payload kafka.DocumentIngestedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("malformed document payload: %w", err)
	}

	w.logger.Info("processing ingested document",
		logging.String("document_id", payload.DocumentID),
		logging.String("jurisdiction", payload.Jurisdiction))

	content, err := w.artifacts.GetDocument(ctx, payload.DocumentID, payload.Jurisdiction)
	if err != nil {
		return fmt.Errorf("failed to fetch document %s: %w", payload.DocumentID, err)
	}

	result, err := w.service.AnalyzeText(ctx, string(content), payload.DocumentID, payload.Jurisdiction)
	if err != nil {
		return fmt.Errorf("analysis failed for %s: %w", payload.DocumentID, err)
	}

	if err := w.documents.SaveAnalysis(ctx, *result); err != nil {
		return fmt.Errorf("failed to persist analysis for %s: %w", payload.DocumentID, err)
	}

	w.logger.Info("document analyzed",
		logging.String("document_id", payload.DocumentID),
		logging.Int("clauses", len(result.Clauses)),
		logging.Int("ambiguities", result.Ambiguity.TotalInstances))
	return nil
}

func postgresConfig(cfg config.DatabaseConfig) postgres.Config {
	return postgres.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxConns:        int32(cfg.MaxConns),
		MinConns:        int32(cfg.MinConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func minioConfig(cfg config.MinIOConfig) *minio.MinIOConfig {
	return &minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		UseSSL:          cfg.UseSSL,
		PresignExpiry:   cfg.PresignExpiry,
	}
}

// loadConfig reads the config file when present, falling back to pure
// environment configuration.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	fmt.Fprintf(os.Stderr, "config file %s not found, loading from environment\n", path)
	return config.LoadFromEnv()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := cfg.Format
	if format == "text" {
		format = "console"
	}
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           format,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	})
}
