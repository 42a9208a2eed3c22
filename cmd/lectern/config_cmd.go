package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# speech engine: piper or mock
engine: "piper"

tts:
  # voice name passed to the engine
  voice: "en_US-amy-medium"
  # path to the voice model (.onnx)
  # voice_path: "/path/to/en_US-amy-medium.onnx"
  # path to the voice model config (defaults to the model path with .json)
  # model_path: "/path/to/en_US-amy-medium.onnx.json"

  # speech rate multiplier (0.5 to 2.0)
  rate: 1.0
  # audio output sample rate, must match the voice model
  sample_rate: 22050

  # synthesis batching
  max_tokens_per_batch: 200
  fallback_chunk_chars: 150

  # how often playback reacts to pause and stop (at most 150ms)
  poll_interval: "100ms"

  # synthesized audio cache
  cache:
    enabled: true
    # cache directory (defaults to the user cache dir)
    # dir: "/path/to/cache"
    max_entries: 128
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the lectern config file",
	Long:    "\nEdit the lectern config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "lectern config\nlectern config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Lectern", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
