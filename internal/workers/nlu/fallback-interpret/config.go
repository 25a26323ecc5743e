// internal/workers/nlu/fallback-interpret/config.go
package fallbackinterpret

import (
	"time"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	RetryOnEmpty bool
	ViewLimits   catalog.ViewLimits
	SuggestLimit int
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		RetryOnEmpty: cfg.Fallback.RetryOnEmpty,
		ViewLimits: catalog.ViewLimits{
			Products: cfg.Fallback.ProductLimit,
			Tags:     cfg.Fallback.TagLimit,
		},
		SuggestLimit: cfg.Fallback.SuggestLimit,
	}
}
