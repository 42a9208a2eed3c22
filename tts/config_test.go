package tts

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"rate too low", func(c *Config) { c.Rate = 0.1 }, ErrRateOutOfRange},
		{"rate too high", func(c *Config) { c.Rate = 4.0 }, ErrRateOutOfRange},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, ErrInvalidConfig},
		{"zero token budget", func(c *Config) { c.MaxTokensPerBatch = 0 }, ErrInvalidConfig},
		{"zero chunk budget", func(c *Config) { c.FallbackChunkChars = 0 }, ErrInvalidConfig},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, ErrInvalidConfig},
		{"poll interval too coarse", func(c *Config) { c.PollInterval = 200 * time.Millisecond }, ErrInvalidConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err != tc.want {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	// 150ms is the coarsest acceptable poll interval.
	cfg := DefaultConfig()
	cfg.PollInterval = 150 * time.Millisecond
	if err := cfg.Validate(); err != nil {
		t.Errorf("150ms poll interval should be valid: %v", err)
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	want := DefaultConfig()
	if cfg.Voice != want.Voice || cfg.Rate != want.Rate || cfg.SampleRate != want.SampleRate {
		t.Errorf("env defaults = %+v, want %+v", cfg, want)
	}
	if cfg.MaxTokensPerBatch != 200 || cfg.FallbackChunkChars != 150 {
		t.Errorf("batching defaults = %d/%d, want 200/150", cfg.MaxTokensPerBatch, cfg.FallbackChunkChars)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("LECTERN_VOICE", "en_GB-alba-medium")
	t.Setenv("LECTERN_RATE", "1.25")
	t.Setenv("LECTERN_POLL_INTERVAL", "50ms")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Voice != "en_GB-alba-medium" {
		t.Errorf("voice = %q", cfg.Voice)
	}
	if cfg.Rate != 1.25 {
		t.Errorf("rate = %v", cfg.Rate)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
}

func TestLoadConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("LECTERN_RATE", "9.0")
	if _, err := LoadConfigFromEnv(); err != ErrRateOutOfRange {
		t.Errorf("got %v, want ErrRateOutOfRange", err)
	}
}
