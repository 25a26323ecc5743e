// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// CLASSIFIER_LOW_CONFIDENCE_THRESHOLD overrides classifier.low_confidence_threshold
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment file is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)
	setKeyDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known environment variables when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Fallback.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.Fallback.APIKey = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Review.TopicARN == "" {
		if val := os.Getenv("REVIEW_TOPIC_ARN"); val != "" {
			cfg.Review.TopicARN = val
		}
	}
}

// setKeyDefaults covers settings where zero is a meaningful value, so they are
// defaulted only when the key is absent.
func setKeyDefaults(v *viper.Viper) {
	v.SetDefault("classifier.low_confidence_threshold", 0.60)
	v.SetDefault("classifier.uncertain_threshold", 0.85)
	v.SetDefault("classifier.fuzzy_min_similarity", 0.85)
	v.SetDefault("classifier.fuzzy_min_length", 5)
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tile-intent-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.ProductIndex == "" {
		cfg.Database.Elasticsearch.ProductIndex = "catalog-products"
	}

	if len(cfg.Classifier.StopWords) == 0 {
		cfg.Classifier.StopWords = []string{"product", "products", "tile", "tiles", "item", "items"}
	}

	if len(cfg.Catalog.Sources) == 0 {
		cfg.Catalog.Sources = []string{"file"}
	}
	if cfg.Catalog.FilePath == "" {
		cfg.Catalog.FilePath = "configs/catalog.json"
	}
	if cfg.Catalog.RedisKey == "" {
		cfg.Catalog.RedisKey = "catalog:snapshot"
	}
	if cfg.Catalog.RefreshInterval == 0 {
		cfg.Catalog.RefreshInterval = 6 * 60 * 60 * 1000
	}
	if cfg.Catalog.LoadTimeout == 0 {
		cfg.Catalog.LoadTimeout = 30000
	}

	if cfg.Fallback.Model == "" {
		cfg.Fallback.Model = "gpt-4o-mini"
	}
	if cfg.Fallback.MaxTokens == 0 {
		cfg.Fallback.MaxTokens = 500
	}
	if cfg.Fallback.Timeout == 0 {
		cfg.Fallback.Timeout = 15000
	}
	if cfg.Fallback.CacheTTL == 0 {
		cfg.Fallback.CacheTTL = 10 * 60 * 1000
	}
	if cfg.Fallback.ProductLimit == 0 {
		cfg.Fallback.ProductLimit = 100
	}
	if cfg.Fallback.TagLimit == 0 {
		cfg.Fallback.TagLimit = 50
	}
	if cfg.Fallback.SuggestLimit == 0 {
		cfg.Fallback.SuggestLimit = 5
	}

	if cfg.Review.Region == "" {
		cfg.Review.Region = "us-east-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":8080"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = cfg.App.Name
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	c := cfg.Classifier
	if c.LowConfidenceThreshold < 0 || c.LowConfidenceThreshold > 1 {
		return fmt.Errorf("classifier.low_confidence_threshold must be within [0,1], got %v", c.LowConfidenceThreshold)
	}
	if c.UncertainThreshold < c.LowConfidenceThreshold || c.UncertainThreshold > 1 {
		return fmt.Errorf("classifier.uncertain_threshold must be within [low_confidence_threshold,1], got %v", c.UncertainThreshold)
	}
	if c.FuzzyMinSimilarity < 0 || c.FuzzyMinSimilarity > 1 {
		return fmt.Errorf("classifier.fuzzy_min_similarity must be within [0,1], got %v", c.FuzzyMinSimilarity)
	}
	if c.FuzzyMinLength < 0 {
		return fmt.Errorf("classifier.fuzzy_min_length must not be negative, got %d", c.FuzzyMinLength)
	}

	for _, source := range cfg.Catalog.Sources {
		switch source {
		case "file":
			if cfg.Catalog.FilePath == "" {
				return fmt.Errorf("catalog.file_path is required for the file source")
			}
		case "redis":
			if cfg.Database.Redis.Address == "" {
				return fmt.Errorf("database.redis.address is required for the redis catalog source")
			}
		case "postgres":
			if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
				return fmt.Errorf("database.postgres.host and database are required for the postgres catalog source")
			}
		case "elasticsearch":
			if len(cfg.Database.Elasticsearch.Addresses) == 0 {
				return fmt.Errorf("database.elasticsearch.addresses is required for the elasticsearch catalog source")
			}
		default:
			return fmt.Errorf("unknown catalog source %q", source)
		}
	}

	if cfg.Fallback.Enabled && cfg.Fallback.APIKey == "" {
		return fmt.Errorf("fallback.api_key is required when fallback is enabled")
	}
	if cfg.Review.Enabled && cfg.Review.TopicARN == "" {
		return fmt.Errorf("review.topic_arn is required when review is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
