package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultSimilarityThreshold, cfg.Analysis.SimilarityThreshold)
	assert.Equal(t, DefaultScorer, cfg.Analysis.Scorer)
	assert.Equal(t, DefaultConservativeFactor, cfg.Analysis.ConservativeFactor)
	assert.Equal(t, DefaultConfidenceLevel, cfg.Analysis.ConfidenceLevel)
	assert.Equal(t, DefaultMinClauseLength, cfg.Analysis.MinClauseLength)
	assert.Equal(t, DefaultMaxClauseLength, cfg.Analysis.MaxClauseLength)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Analysis.SimilarityThreshold = 0.85
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 0.85, cfg.Analysis.SimilarityThreshold)
}

func TestApplyDefaults_NilConfigDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
