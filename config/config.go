package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/weave-app/weave-server/story"
)

// Config is loaded once at startup from the environment. Sampling bounds are
// configuration rather than inline magic numbers so a fixed-seed test setup
// can reintroduce determinism.
type Config struct {
	Port     string `envconfig:"PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiBaseURL     string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash-exp:generateContent"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"90s"`

	// Author selection: the default strategy picks the first author of the
	// genre pool; setting this switches to the preference-aware selector.
	UsePreferredAuthors bool `envconfig:"USE_PREFERRED_AUTHORS" default:"false"`

	TemperatureMin float64 `envconfig:"GEN_TEMPERATURE_MIN" default:"0.85"`
	TemperatureMax float64 `envconfig:"GEN_TEMPERATURE_MAX" default:"1.2"`
	TopPMin        float64 `envconfig:"GEN_TOP_P_MIN" default:"0.7"`
	TopPMax        float64 `envconfig:"GEN_TOP_P_MAX" default:"0.95"`
	TopKMin        int     `envconfig:"GEN_TOP_K_MIN" default:"15"`
	TopKMax        int     `envconfig:"GEN_TOP_K_MAX" default:"40"`
	MaxTokensMin   int     `envconfig:"GEN_MAX_TOKENS_MIN" default:"900"`
	MaxTokensMax   int     `envconfig:"GEN_MAX_TOKENS_MAX" default:"1100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return &cfg, nil
}

// SamplingBounds packages the generation parameter ranges for the client.
func (c *Config) SamplingBounds() story.SamplingBounds {
	return story.SamplingBounds{
		TemperatureMin: c.TemperatureMin,
		TemperatureMax: c.TemperatureMax,
		TopPMin:        c.TopPMin,
		TopPMax:        c.TopPMax,
		TopKMin:        c.TopKMin,
		TopKMax:        c.TopKMax,
		MaxTokensMin:   c.MaxTokensMin,
		MaxTokensMax:   c.MaxTokensMax,
	}
}
