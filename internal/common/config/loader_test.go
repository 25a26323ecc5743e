package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
workers:
  classify-utterance:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tile-intent-workers", cfg.App.Name)
	assert.Equal(t, 0.60, cfg.Classifier.LowConfidenceThreshold)
	assert.Equal(t, 0.85, cfg.Classifier.UncertainThreshold)
	assert.Equal(t, 0.85, cfg.Classifier.FuzzyMinSimilarity)
	assert.Equal(t, 5, cfg.Classifier.FuzzyMinLength)
	assert.ElementsMatch(t, []string{"product", "products", "tile", "tiles", "item", "items"}, cfg.Classifier.StopWords)
	assert.Equal(t, []string{"file"}, cfg.Catalog.Sources)
	assert.Equal(t, 6*time.Hour, GetDuration(cfg.Catalog.RefreshInterval))

	worker := cfg.Workers["classify-utterance"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_KeepsExplicitZeroThresholds(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
classifier:
  low_confidence_threshold: 0
  fuzzy_min_similarity: 0
  fuzzy_min_length: 0
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Zero(t, cfg.Classifier.LowConfidenceThreshold)
	assert.Zero(t, cfg.Classifier.FuzzyMinSimilarity)
	assert.Zero(t, cfg.Classifier.FuzzyMinLength)
	assert.Equal(t, 0.85, cfg.Classifier.UncertainThreshold, "absent keys still get defaults")
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_BROKER", "zeebe:26500")
	t.Setenv("TEST_LLM_KEY", "sk-test")

	path := writeConfig(t, `
camunda:
  broker_address: ${TEST_BROKER}
fallback:
  enabled: true
  api_key: ${TEST_LLM_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "sk-test", cfg.Fallback.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "app:\n  name: x\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "uncertain below low",
			body: `
camunda:
  broker_address: localhost:26500
classifier:
  low_confidence_threshold: 0.7
  uncertain_threshold: 0.5
`,
			wantErr: "classifier.uncertain_threshold",
		},
		{
			name: "fuzzy similarity above one",
			body: `
camunda:
  broker_address: localhost:26500
classifier:
  fuzzy_min_similarity: 1.5
`,
			wantErr: "classifier.fuzzy_min_similarity",
		},
		{
			name: "unknown catalog source",
			body: `
camunda:
  broker_address: localhost:26500
catalog:
  sources: [ftp]
`,
			wantErr: `unknown catalog source "ftp"`,
		},
		{
			name: "redis source without address",
			body: `
camunda:
  broker_address: localhost:26500
catalog:
  sources: [redis]
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "review without topic",
			body: `
camunda:
  broker_address: localhost:26500
review:
  enabled: true
`,
			wantErr: "review.topic_arn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REVIEW_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"fallback-interpret": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "fallback-interpret"))
	assert.True(t, IsWorkerEnabled(cfg, "classify-utterance"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "fallback-interpret").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "classify-utterance").MaxJobsActive)
}
