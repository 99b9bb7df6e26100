// Command apiserver runs the RegGap-Intelligence REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/config"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j"
	graphrepos "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/RegGap-Intelligence/internal/interfaces/http"
	"github.com/turtacn/RegGap-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/RegGap-Intelligence/internal/interfaces/http/middleware"
)

// Build-time variable injected via ldflags.
var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
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
	logger.Info("starting RegGap-Intelligence API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is the system of record; the server does not start without it.
	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgresURL(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}
	pgConn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pgConn.Close()

	documentRepo := pgrepos.NewDocumentRepository(pgConn.Pool(), logger)
	reportRepo := pgrepos.NewReportRepository(pgConn.Pool(), logger)

	checkers := []handlers.HealthChecker{&postgresHealthAdapter{conn: pgConn}}

	// The remaining backends degrade gracefully: the endpoints they back
	// are disabled and readiness reports them, but the core API stays up.
	redisClient, err := redis.NewClient(redisConfig(cfg.Redis), logger)
	if err != nil {
		logger.Warn("redis unavailable, similarity cache disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		checkers = append(checkers, &redisHealthAdapter{client: redisClient})
	}

	var glossaryHandler *handlers.GlossaryHandler
	graphDriver, err := neo4j.NewDriver(neo4jConfig(cfg.Neo4j), logger)
	if err != nil {
		logger.Warn("neo4j unavailable, glossary endpoints disabled", logging.Err(err))
	} else {
		defer graphDriver.Close()
		termGraph := graphrepos.NewTermGraphRepository(graphDriver, logger)
		if err := termGraph.EnsureConstraints(ctx); err != nil {
			logger.Warn("failed to ensure graph constraints", logging.Err(err))
		}
		glossaryHandler = handlers.NewGlossaryHandler(termGraph, logger)
		checkers = append(checkers, &neo4jHealthAdapter{driver: graphDriver})
	}

	minioClient, err := minio.NewMinIOClient(minioConfig(cfg.MinIO), logger)
	if err != nil {
		logger.Warn("minio unavailable, artifact storage disabled", logging.Err(err))
	} else {
		defer minioClient.Close()
		checkers = append(checkers, &minioHealthAdapter{client: minioClient})
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            prometheus.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics collector failed: %w", err)
	}
	appMetrics := prometheus.NewAppMetrics(collector)

	serviceOpts := []analysis.ServiceOption{
		analysis.WithPipelineMetrics(prometheus.NewPipelineRecorder(appMetrics)),
		analysis.WithReportRepository(reportRepo),
		analysis.WithConcurrency(cfg.Worker.Concurrency),
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		logger.Warn("kafka unavailable, event publishing disabled", logging.Err(err))
	} else {
		defer producer.Close()
		serviceOpts = append(serviceOpts, analysis.WithEventPublisher(kafka.NewEventPublisher(producer, logger)))
	}

	service := analysis.NewService(logger, serviceOpts...)

	limiter := middleware.NewTokenBucketLimiter(50, 100, 5*time.Minute)
	defer limiter.Stop()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = []string{"*"}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler:  handlers.NewAnalysisHandler(service, documentRepo, logger),
		ReportHandler:    handlers.NewReportHandler(service, reportRepo, logger),
		GlossaryHandler:  glossaryHandler,
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		Logger:           logger,
		CORSConfig:       &corsCfg,
		RateLimiter:      limiter,
		Metrics:          appMetrics,
		MetricsCollector: collector,
		Mode:             cfg.Server.Mode,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	return server.Stop(context.Background())
}

// loadConfig reads the config file when present, falling back to pure
// environment configuration for containerised deployments.
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
