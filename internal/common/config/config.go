// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Classifier ClassifierConfig        `mapstructure:"classifier"`
	Catalog    CatalogConfig           `mapstructure:"catalog"`
	Fallback   FallbackConfig          `mapstructure:"fallback"`
	Review     ReviewConfig            `mapstructure:"review"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Metrics    MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	ProductIndex string   `mapstructure:"product_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration Sections ---

// ClassifierConfig is handed to the classification core at construction time.
type ClassifierConfig struct {
	LowConfidenceThreshold float64  `mapstructure:"low_confidence_threshold"`
	UncertainThreshold     float64  `mapstructure:"uncertain_threshold"`
	FuzzyMinSimilarity     float64  `mapstructure:"fuzzy_min_similarity"`
	FuzzyMinLength         int      `mapstructure:"fuzzy_min_length"`
	StopWords              []string `mapstructure:"stop_words"`
}

// CatalogConfig selects where snapshots come from and how often they are rebuilt.
type CatalogConfig struct {
	// Sources are tried in order: file, redis, postgres, elasticsearch.
	Sources         []string `mapstructure:"sources"`
	FilePath        string   `mapstructure:"file_path"`
	RedisKey        string   `mapstructure:"redis_key"`
	RedisTTL        int      `mapstructure:"redis_ttl"`        // milliseconds, 0 keeps forever
	RefreshInterval int      `mapstructure:"refresh_interval"` // milliseconds
	LoadTimeout     int      `mapstructure:"load_timeout"`     // milliseconds
}

// FallbackConfig configures the LLM interpreter used after an escalation.
type FallbackConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Timeout      int     `mapstructure:"timeout"`   // milliseconds
	CacheTTL     int     `mapstructure:"cache_ttl"` // milliseconds
	RetryOnEmpty bool    `mapstructure:"retry_on_empty"`
	ProductLimit int     `mapstructure:"product_limit"`
	TagLimit     int     `mapstructure:"tag_limit"`
	SuggestLimit int     `mapstructure:"suggest_limit"`
}

// ReviewConfig controls publishing of escalated utterances for offline review.
type ReviewConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the health/metrics listener settings.
type MetricsConfig struct {
	Address     string `mapstructure:"address"`
	ServiceName string `mapstructure:"service_name"`
}
