package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper merges narration settings from Viper over the
// defaults. Only keys that are actually set override.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.voice") {
		cfg.Voice = viper.GetString("tts.voice")
	}
	if viper.IsSet("tts.voice_path") {
		cfg.VoicePath = viper.GetString("tts.voice_path")
	}
	if viper.IsSet("tts.model_path") {
		cfg.ModelPath = viper.GetString("tts.model_path")
	}
	if viper.IsSet("tts.rate") {
		cfg.Rate = viper.GetFloat64("tts.rate")
	}
	if viper.IsSet("tts.sample_rate") {
		cfg.SampleRate = viper.GetInt("tts.sample_rate")
	}
	if viper.IsSet("tts.max_tokens_per_batch") {
		cfg.MaxTokensPerBatch = viper.GetInt("tts.max_tokens_per_batch")
	}
	if viper.IsSet("tts.fallback_chunk_chars") {
		cfg.FallbackChunkChars = viper.GetInt("tts.fallback_chunk_chars")
	}
	if viper.IsSet("tts.poll_interval") {
		cfg.PollInterval = viper.GetDuration("tts.poll_interval")
		if cfg.PollInterval <= 0 {
			cfg.PollInterval = 100 * time.Millisecond
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("tts config: %w", err)
	}
	return cfg, nil
}
