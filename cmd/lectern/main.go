// Package main provides the entry point for the lectern CLI, a continuous
// text-to-speech reader for extracted book text.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/lectern/internal/audio"
	"github.com/dgnsrekt/lectern/internal/cache"
	"github.com/dgnsrekt/lectern/internal/progress"
	"github.com/dgnsrekt/lectern/tts"
	"github.com/dgnsrekt/lectern/tts/engines/mock"
	"github.com/dgnsrekt/lectern/tts/engines/piper"
	"github.com/dgnsrekt/lectern/tts/session"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	voice      string
	voicePath  string
	modelPath  string
	rate       float64
	fromPage   int
	resume     bool
	outPath    string
	progressDB string
	noProgress bool

	rootCmd = &cobra.Command{
		Use:           "lectern [FILE]",
		Short:         "Read books aloud, continuously",
		Long:          "\nNarrate extracted book text with an on-device speech model, page after page, picking up where you left off.",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: execute,
	}
)

// readSource reads the document text from a file argument, "-", or a piped
// stdin. Pages are separated by form feed characters, the convention of PDF
// text extractors.
func readSource(args []string) (name, content string, err error) {
	if len(args) == 0 || args[0] == "-" {
		if yes, err := stdinIsPipe(); err != nil {
			return "", "", err
		} else if !yes && len(args) == 0 {
			return "", "", errors.New("missing text source: pass a file or pipe text in")
		}
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read stdin: %w", err)
		}
		return "stdin", string(b), nil
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("unable to open file: %w", err)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		abs = args[0]
	}
	return abs, string(b), nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// buildConfig merges viper settings with command line overrides.
func buildConfig(cmd *cobra.Command) (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return tts.Config{}, err
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = rate
	}
	if cmd.Flags().Changed("voice") {
		cfg.Voice = voice
	}
	if voicePath != "" {
		cfg.VoicePath = voicePath
	}
	if modelPath != "" {
		cfg.ModelPath = modelPath
	}
	return cfg, cfg.Validate()
}

// buildEngine assembles the synthesis stack for the selected engine over
// the given output device, with the audio cache layered in when enabled.
func buildEngine(cfg tts.Config, device tts.Device) (*tts.Engine, error) {
	var phonemizer tts.Phonemizer
	var synth tts.Synthesizer

	switch engineName {
	case "piper":
		s := piper.NewSynthesizer()
		s.SampleRate = cfg.SampleRate
		phonemizer, synth = piper.NewPhonemizer(), s
	case "mock":
		s := mock.NewSynthesizer()
		s.SampleRate = cfg.SampleRate
		phonemizer, synth = &mock.Phonemizer{}, s
	default:
		return nil, fmt.Errorf("unknown engine %q: use piper or mock", engineName)
	}

	if viper.GetBool("tts.cache.enabled") {
		dir := viper.GetString("tts.cache.dir")
		if dir == "" {
			scope := gap.NewScope(gap.User, "lectern")
			if p, err := scope.CacheDir(); err == nil {
				dir = filepath.Join(p, "audio")
			}
		}
		store, err := cache.New(viper.GetInt("tts.cache.max_entries"), dir)
		if err != nil {
			return nil, fmt.Errorf("unable to open audio cache: %w", err)
		}
		synth = cache.WrapSynthesizer(synth, store)
		log.Debug("audio cache enabled", "dir", dir)
	}

	return tts.NewEngine(phonemizer, synth, device, cfg), nil
}

func openProgressStore(ctx context.Context) (*progress.Store, error) {
	if noProgress {
		return nil, nil
	}
	path := progressDB
	if path == "" {
		scope := gap.NewScope(gap.User, "lectern")
		p, err := scope.DataPath("progress.db")
		if err != nil {
			return nil, fmt.Errorf("unable to locate data dir: %w", err)
		}
		path = p
	}
	return progress.Open(ctx, path)
}

func execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, content, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug("loaded source", "name", name, "size", humanize.Bytes(uint64(len(content))))

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("engine") {
		if v := viper.GetString("engine"); v != "" {
			engineName = v
		}
	}

	store, err := openProgressStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	from := fromPage
	if resume && store != nil && !cmd.Flags().Changed("from-page") {
		if pos, ok, err := store.Load(ctx, name); err != nil {
			log.Warn("unable to load saved position", "error", err)
		} else if ok {
			from = pos.Page
			log.Info("resuming", "page", humanize.Ordinal(pos.Page+1), "saved", humanize.Time(pos.UpdatedAt))
		}
	}

	pages := session.ParsePages(content)
	sentences, pageMap := session.BuildRemaining(pages, from)
	if len(sentences) == 0 {
		log.Info("nothing to read", "source", name, "from_page", from)
		return nil
	}
	log.Debug("session assembled",
		"pages", len(pages), "sentences", len(sentences), "page_turns", len(session.PageTurns(pageMap)))

	var capture *audio.CaptureDevice
	var device tts.Device
	if outPath != "" {
		capture = audio.NewCaptureDevice()
		device = capture
	} else {
		dev, err := audio.NewDevice(cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("unable to open audio device: %w", err)
		}
		defer dev.Close() //nolint:errcheck
		device = dev
	}

	engine, err := buildEngine(cfg, device)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("unable to initialize narration: %w", err)
	}

	// Announce page turns and persist the reading position as narration
	// crosses page boundaries.
	indexStream, cancelIndex := engine.SentenceIndexStream()
	defer cancelIndex()
	go func() {
		lastPage := -1
		for idx := range indexStream {
			if idx < 0 || idx >= len(pageMap) {
				continue
			}
			page := pageMap[idx]
			if page != lastPage {
				log.Info("reading", "page", humanize.Ordinal(page+1))
				lastPage = page
			}
			if store != nil {
				if err := store.Save(context.Background(), name, page, idx); err != nil {
					log.Warn("unable to save position", "error", err)
				}
			}
		}
	}()

	dur, err := engine.SpeakSentences(ctx, sentences)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("narration interrupted", "generated", dur.Round(time.Millisecond))
			return nil
		}
		return err
	}
	log.Info("narration finished", "audio", dur, "sentences", len(sentences))

	if capture != nil {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("unable to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		if err := capture.WriteWAV(f); err != nil {
			return err
		}
		log.Info("wrote audio", "path", outPath, "size", humanize.Bytes(uint64(capture.Len())))
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func setupLog() (func() error, error) {
	log.SetReportTimestamp(false)
	if lvl := os.Getenv("LECTERN_LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			log.SetLevel(parsed)
		}
	}

	path := os.Getenv("LECTERN_LOG_FILE")
	if path == "" {
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "piper", "speech engine (piper or mock)")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice name passed to the engine")
	rootCmd.Flags().StringVar(&voicePath, "voice-path", "", "path to the voice model")
	rootCmd.Flags().StringVar(&modelPath, "model-path", "", "path to the voice model config")
	rootCmd.Flags().Float64VarP(&rate, "rate", "r", 1.0, "speech rate multiplier (0.5 to 2.0)")
	rootCmd.Flags().IntVarP(&fromPage, "from-page", "f", 0, "first page to read (zero-based)")
	rootCmd.Flags().BoolVar(&resume, "resume", true, "resume from the saved reading position")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "render narration to a WAV file instead of playing it")
	rootCmd.Flags().StringVar(&progressDB, "progress-db", "", "path to the reading position database")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not load or save reading positions")

	viper.SetDefault("tts.cache.enabled", true)
	viper.SetDefault("tts.cache.dir", "")
	viper.SetDefault("tts.cache.max_entries", cache.DefaultMaxEntries)

	rootCmd.AddCommand(configCmd, progressCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lectern")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lectern")}, dirs...)
	}
	if c := os.Getenv("LECTERN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lectern")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lectern")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}
	configFile = filepath.Join(dirs[0], "lectern.yml")
}
