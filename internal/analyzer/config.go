package analyzer

import (
	"time"

	"github.com/joseph-ayodele/assignment-feedback/internal/common"
)

// Config is passed to the analyzer at construction; there is no package-level state.
type Config struct {
	MaxChunkSize        int           `validate:"gt=0"`
	SinglePassThreshold int           `validate:"gt=0"`
	Model               string        // reported in results only
	MaxRetries          int           `validate:"gte=0"`
	Concurrency         int           `validate:"gt=0"`
	BackoffBase         time.Duration `validate:"gte=0"`
	BackoffMax          time.Duration `validate:"gte=0"`
}

// DefaultConfig matches the defaults of common.LoadConfig.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:        8000,
		SinglePassThreshold: 30000,
		MaxRetries:          3,
		Concurrency:         3,
		BackoffBase:         500 * time.Millisecond,
		BackoffMax:          10 * time.Second,
	}
}

// ConfigFrom maps the application configuration onto the analyzer's.
func ConfigFrom(cfg *common.Config) Config {
	return Config{
		MaxChunkSize:        cfg.Analysis.MaxChunkSize,
		SinglePassThreshold: cfg.Analysis.SinglePassThreshold,
		Model:               cfg.LLM.Model,
		MaxRetries:          cfg.Analysis.MaxRetries,
		Concurrency:         cfg.Analysis.Concurrency,
		BackoffBase:         cfg.Analysis.BackoffBase,
		BackoffMax:          cfg.Analysis.BackoffMax,
	}
}

func (c Config) Validate() error {
	if err := common.ValidateStruct(c); err != nil {
		return common.NewAppError("CONFIG_ERROR", "invalid analyzer configuration", err)
	}
	return nil
}
