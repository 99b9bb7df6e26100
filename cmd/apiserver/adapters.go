package main

import (
	"context"
	"fmt"

	"github.com/turtacn/RegGap-Intelligence/internal/config"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/storage/minio"
)

// ───────────────────────── config translation ─────────────────────────
// The infrastructure packages each define their own config struct so they
// can be used standalone; these helpers map the root config onto them.

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

func postgresURL(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, sslMode)
}

func redisConfig(cfg config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Mode:         "single",
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func neo4jConfig(cfg config.Neo4jConfig) neo4j.Neo4jConfig {
	return neo4j.Neo4jConfig{
		URI:                          cfg.URI,
		Username:                     cfg.User,
		Password:                     cfg.Password,
		Database:                     cfg.Database,
		MaxConnectionPoolSize:        cfg.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: cfg.ConnectionTimeout,
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

// ───────────────────────── health checker adapters ─────────────────────────

type postgresHealthAdapter struct {
	conn *postgres.Connection
}

func (a *postgresHealthAdapter) Name() string { return "postgres" }

func (a *postgresHealthAdapter) Check(ctx context.Context) error {
	return a.conn.HealthCheck(ctx)
}

type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string { return "redis" }

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type neo4jHealthAdapter struct {
	driver *neo4j.Driver
}

func (a *neo4jHealthAdapter) Name() string { return "neo4j" }

func (a *neo4jHealthAdapter) Check(ctx context.Context) error {
	return a.driver.HealthCheck(ctx)
}

type minioHealthAdapter struct {
	client *minio.MinIOClient
}

func (a *minioHealthAdapter) Name() string { return "minio" }

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	_, err := a.client.HealthCheck(ctx)
	return err
}
