package classifier

import (
	"errors"
	"fmt"

	"tile-intent-workers/internal/common/config"
)

var ErrInvalidConfig = errors.New("invalid classifier config")

// Config holds the tunables. Thresholds are configuration, not constants: they
// come from the classifier section of the service config.
type Config struct {
	LowConfidenceThreshold float64
	UncertainThreshold     float64
	// FuzzyMinSimilarity of zero disables typo matching of product names.
	FuzzyMinSimilarity float64
	FuzzyMinLength     int
	StopWords          []string
}

func DefaultConfig() Config {
	return Config{
		LowConfidenceThreshold: 0.60,
		UncertainThreshold:     0.85,
		FuzzyMinSimilarity:     0.85,
		FuzzyMinLength:         5,
		StopWords:              DefaultStopWords(),
	}
}

// ConfigFromApp maps the classifier section of the service config. Defaults are
// already applied by the loader.
func ConfigFromApp(cfg config.ClassifierConfig) Config {
	return Config{
		LowConfidenceThreshold: cfg.LowConfidenceThreshold,
		UncertainThreshold:     cfg.UncertainThreshold,
		FuzzyMinSimilarity:     cfg.FuzzyMinSimilarity,
		FuzzyMinLength:         cfg.FuzzyMinLength,
		StopWords:              cfg.StopWords,
	}
}

// DefaultStopWords are the generic nouns that never bind a product or category.
func DefaultStopWords() []string {
	return []string{"product", "products", "tile", "tiles", "item", "items"}
}

func (c Config) Validate() error {
	if c.LowConfidenceThreshold < 0 || c.LowConfidenceThreshold > 1 {
		return fmt.Errorf("%w: low confidence threshold %v outside [0,1]", ErrInvalidConfig, c.LowConfidenceThreshold)
	}
	if c.UncertainThreshold < c.LowConfidenceThreshold || c.UncertainThreshold > 1 {
		return fmt.Errorf("%w: uncertain threshold %v must be within [%v,1]", ErrInvalidConfig, c.UncertainThreshold, c.LowConfidenceThreshold)
	}
	if c.FuzzyMinSimilarity < 0 || c.FuzzyMinSimilarity > 1 {
		return fmt.Errorf("%w: fuzzy similarity %v outside [0,1]", ErrInvalidConfig, c.FuzzyMinSimilarity)
	}
	if c.FuzzyMinLength < 0 {
		return fmt.Errorf("%w: negative fuzzy min length", ErrInvalidConfig)
	}
	return nil
}
