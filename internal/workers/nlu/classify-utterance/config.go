// internal/workers/nlu/classify-utterance/config.go
package classifyutterance

import (
	"time"

	"tile-intent-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig reads the worker section; the classifier itself is configured once
// for the whole process.
func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
	}
}
