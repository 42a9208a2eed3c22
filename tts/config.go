package tts

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds narration engine settings.
type Config struct {
	// Voice and model
	Voice     string `yaml:"voice" env:"LECTERN_VOICE" envDefault:"en_US-amy-medium"`
	VoicePath string `yaml:"voice_path" env:"LECTERN_VOICE_PATH"`
	ModelPath string `yaml:"model_path" env:"LECTERN_MODEL_PATH"`

	// Playback
	Rate       float64 `yaml:"rate" env:"LECTERN_RATE" envDefault:"1.0"`
	SampleRate int     `yaml:"sample_rate" env:"LECTERN_SAMPLE_RATE" envDefault:"22050"`

	// Batching
	MaxTokensPerBatch  int `yaml:"max_tokens_per_batch" env:"LECTERN_MAX_TOKENS_PER_BATCH" envDefault:"200"`
	FallbackChunkChars int `yaml:"fallback_chunk_chars" env:"LECTERN_FALLBACK_CHUNK_CHARS" envDefault:"150"`

	// How often the playback loop checks for pause/stop and playback
	// completion. Status changes are honored within roughly this interval.
	PollInterval time.Duration `yaml:"poll_interval" env:"LECTERN_POLL_INTERVAL" envDefault:"100ms"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Voice:              "en_US-amy-medium",
		Rate:               1.0,
		SampleRate:         22050,
		MaxTokensPerBatch:  200,
		FallbackChunkChars: 150,
		PollInterval:       100 * time.Millisecond,
	}
}

// LoadConfigFromEnv builds a Config from defaults plus LECTERN_* environment
// overrides.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.Rate < MinRate || c.Rate > MaxRate {
		return ErrRateOutOfRange
	}
	if c.SampleRate <= 0 || c.MaxTokensPerBatch < 1 || c.FallbackChunkChars < 1 {
		return ErrInvalidConfig
	}
	if c.PollInterval <= 0 || c.PollInterval > 150*time.Millisecond {
		return ErrInvalidConfig
	}
	return nil
}
