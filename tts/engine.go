package tts

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/lectern/tts/batch"
	"github.com/dgnsrekt/lectern/tts/vocab"
)

// Engine drives one continuous narration session at a time. It batches
// input to the synthesis token budget, synthesizes the first batch up
// front, then overlaps synthesis of each following batch with playback of
// the current one so the only perceived gap is the first synthesis call.
//
// Engines are plain values owned by the caller; multiple independent
// instances can coexist, each with its own collaborators.
type Engine struct {
	phonemizer Phonemizer
	adapter    *synthAdapter
	device     Device
	cfg        Config
	logger     *log.Logger

	table    *vocab.Table
	splitter *batch.Splitter

	machine *statusMachine
	speed   *speedController

	statusB *Broadcaster[Status]
	indexB  *Broadcaster[int]

	// runMu serializes sessions: a new Speak waits for the previous
	// session's control loop to unwind after Stop.
	runMu sync.Mutex

	mu          sync.Mutex
	session     *playSession
	voice       string
	phonemesOK  bool
	activeIndex atomic.Int64
}

// unit is one caption unit: a sentence (or whole text) expanded into one or
// more bounded synthesis batches. The unit's index is announced when the
// first of its batches to produce audio begins playing.
type unit struct {
	index      int
	batches    []string
	isPhonemes bool
}

// job is one synthesis batch in session order.
type job struct {
	unitIndex  int
	text       string
	isPhonemes bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine over the given collaborators. Call
// Initialize before Speak.
func NewEngine(phonemizer Phonemizer, synth Synthesizer, device Device, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		phonemizer: phonemizer,
		device:     device,
		cfg:        cfg,
		logger:     log.Default(),
		speed:      newSpeedController(),
		statusB:    NewBroadcaster[Status](),
		indexB:     NewBroadcaster[int](),
		voice:      cfg.Voice,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.adapter = &synthAdapter{synth: synth, logger: e.logger}
	e.machine = newStatusMachine(func(s Status) { e.statusB.Publish(s) })
	if e.cfg.PollInterval <= 0 {
		e.cfg.PollInterval = DefaultConfig().PollInterval
	}
	_ = e.speed.Set(ClampRate(cfg.Rate))
	e.activeIndex.Store(-1)
	return e
}

// Initialize prepares the vocabulary, phonemizer and synthesis model.
// Valid from the uninitialized, ready and error states; clears a previous
// error. Phonemizer failure is not fatal (the engine falls back to text
// chunking); synthesis model failure is.
func (e *Engine) Initialize(ctx context.Context) error {
	switch e.machine.Current() {
	case StatusUninitialized, StatusReady, StatusError:
	default:
		return fmt.Errorf("%w: initialize while %s", ErrInvalidStatus, e.machine.Current())
	}
	if !e.machine.Transition(StatusInitializing) {
		return fmt.Errorf("%w: initialize while %s", ErrInvalidStatus, e.machine.Current())
	}

	table, err := vocab.Load()
	if err != nil {
		e.machine.Transition(StatusError)
		return fmt.Errorf("load vocabulary: %w", err)
	}
	e.table = table
	e.splitter = batch.NewSplitterWithBudget(table, e.cfg.MaxTokensPerBatch)

	phonemesOK := false
	if e.phonemizer != nil {
		if err := e.phonemizer.Initialize(); err != nil {
			e.logger.Warn("phonemizer unavailable, using text chunking fallback", "error", err)
		} else {
			phonemesOK = true
		}
	}
	e.mu.Lock()
	e.phonemesOK = phonemesOK
	e.mu.Unlock()

	if err := e.adapter.synth.Initialize(e.cfg.VoicePath, e.cfg.ModelPath); err != nil {
		e.machine.Transition(StatusError)
		return fmt.Errorf("initialize synthesizer: %w", err)
	}
	if !e.adapter.synth.Available() {
		e.machine.Transition(StatusError)
		return ErrEngineNotAvailable
	}

	if err := ctx.Err(); err != nil {
		e.machine.Transition(StatusError)
		return err
	}

	e.machine.Transition(StatusReady)
	e.logger.Debug("engine initialized",
		"voice", e.voice, "vocab_size", table.Size(), "phonemes", phonemesOK)
	return nil
}

// Status returns the engine's current status.
func (e *Engine) Status() Status {
	return e.machine.Current()
}

// StatusStream subscribes to status transitions.
func (e *Engine) StatusStream() (<-chan Status, func()) {
	return e.statusB.Subscribe()
}

// SentenceIndexStream subscribes to active-unit announcements. An index is
// published at the moment playback of that unit's audio begins.
func (e *Engine) SentenceIndexStream() (<-chan int, func()) {
	return e.indexB.Subscribe()
}

// ActiveIndex returns the most recently announced unit index, or -1 when no
// unit has started playing in the current session.
func (e *Engine) ActiveIndex() int {
	return int(e.activeIndex.Load())
}

// SetRate sets the speech rate multiplier, rejecting values outside
// [MinRate, MaxRate]. Takes effect from the next synthesized batch.
func (e *Engine) SetRate(rate float64) error {
	return e.speed.Set(rate)
}

// Rate returns the current speech rate multiplier.
func (e *Engine) Rate() float64 {
	return e.speed.Rate()
}

// IncreaseRate steps the rate up and returns the new value.
func (e *Engine) IncreaseRate() float64 {
	return e.speed.Increase()
}

// DecreaseRate steps the rate down and returns the new value.
func (e *Engine) DecreaseRate() float64 {
	return e.speed.Decrease()
}

// SetVoice selects the voice for subsequent synthesis calls.
func (e *Engine) SetVoice(voice string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voice = voice
}

// Voice returns the active voice.
func (e *Engine) Voice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voice
}

// Speak narrates a block of text and blocks until the session finishes, is
// stopped, or fails. The returned duration is the total audio generated
// during the session, including any audio a stop prevented from playing. A
// session that produces no audio returns zero with no error. Any in-flight
// session is stopped first.
func (e *Engine) Speak(ctx context.Context, text string) (time.Duration, error) {
	units, err := e.buildUnits([]string{text})
	if err != nil {
		return 0, err
	}
	return e.run(ctx, units)
}

// SpeakSentences narrates a pre-split sentence stream, announcing each
// sentence's index as its audio begins. This is the continuous cross-page
// variant: callers assemble the stream with the session package and map
// indices back to pages.
func (e *Engine) SpeakSentences(ctx context.Context, sentences []string) (time.Duration, error) {
	units, err := e.buildUnits(sentences)
	if err != nil {
		return 0, err
	}
	return e.run(ctx, units)
}

// Pause suspends playback at the device so audio halts immediately.
// Calling Pause while already paused is a no-op; pausing outside an active
// playback is a status error.
func (e *Engine) Pause() error {
	switch e.machine.Current() {
	case StatusPaused:
		return nil
	case StatusSpeaking:
	default:
		return fmt.Errorf("%w: pause while %s", ErrInvalidStatus, e.machine.Current())
	}

	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess == nil {
		return ErrNoActiveSession
	}
	if !e.machine.Transition(StatusPaused) {
		return nil
	}
	return sess.setPaused(e.device, true)
}

// Resume releases a paused session. A no-op when not paused.
func (e *Engine) Resume() error {
	if e.machine.Current() != StatusPaused {
		return nil
	}

	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess == nil {
		return nil
	}
	if !e.machine.Transition(StatusSpeaking) {
		return nil
	}
	return sess.setPaused(e.device, false)
}

// Stop aborts any in-flight session, synchronously halting device playback
// and releasing its resources. Idempotent and safe from any state.
func (e *Engine) Stop() {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess != nil {
		sess.stop.Store(true)
		sess.haltDevice(e.device)
	}

	switch e.machine.Current() {
	case StatusGenerating, StatusSpeaking, StatusPaused:
		e.machine.Transition(StatusReady)
	}
}

// Close stops any session and closes the event streams.
func (e *Engine) Close() {
	e.Stop()
	e.runMu.Lock()
	e.runMu.Unlock()
	e.statusB.Close()
	e.indexB.Close()
}

// buildUnits expands input strings into caption units of bounded batches,
// via the phonemizer when available and the character-budget fallback when
// not.
func (e *Engine) buildUnits(inputs []string) ([]unit, error) {
	switch e.machine.Current() {
	case StatusUninitialized, StatusInitializing:
		return nil, ErrNotInitialized
	case StatusError:
		return nil, fmt.Errorf("%w: speak while %s", ErrInvalidStatus, StatusError)
	}

	e.mu.Lock()
	phonemesOK := e.phonemesOK
	e.mu.Unlock()

	units := make([]unit, 0, len(inputs))
	for i, input := range inputs {
		u := unit{index: i}
		if phonemesOK {
			phonemes, err := e.phonemizer.Phonemize(input)
			if err != nil || phonemes == "" {
				if err != nil {
					e.logger.Warn("phonemize failed, falling back to text chunking", "error", err)
				}
				u.batches = batch.ChunkTextWithBudget(input, e.cfg.FallbackChunkChars)
			} else {
				u.batches = e.splitter.SplitAtBoundaries(phonemes)
				u.isPhonemes = true
			}
		} else {
			u.batches = batch.ChunkTextWithBudget(input, e.cfg.FallbackChunkChars)
		}
		units = append(units, u)
	}
	return units, nil
}

// run executes one session end to end on the calling goroutine. Playback
// happens on the device's own execution context, which is what lets batch
// i+1 synthesize while batch i plays.
func (e *Engine) run(ctx context.Context, units []unit) (time.Duration, error) {
	// A new session implicitly stops the previous one.
	e.Stop()
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.machine.Transition(StatusGenerating) {
		return 0, fmt.Errorf("%w: speak while %s", ErrInvalidStatus, e.machine.Current())
	}

	sess := &playSession{}
	e.mu.Lock()
	e.session = sess
	e.mu.Unlock()
	e.activeIndex.Store(-1)
	defer func() {
		e.mu.Lock()
		if e.session == sess {
			e.session = nil
		}
		e.mu.Unlock()
	}()

	jobs := flatten(units)
	voice := e.Voice()
	var total time.Duration

	// Synthesize up front until the first batch yields audio. Failed or
	// empty batches are skipped, not fatal.
	next := 0
	chunk, current := e.nextChunk(sess, jobs, &next, voice, &total)
	if chunk == nil {
		// Nothing to play; a silent session is a no-op, not an error.
		e.machine.Transition(StatusReady)
		return total, nil
	}

	if !e.machine.Transition(StatusSpeaking) {
		// A stop raced the first synthesis back to ready.
		return total, nil
	}

	announced := -1
	for chunk != nil {
		// A pause can land in the gap between two chunks; never start the
		// next playback until resumed.
		if err := e.waitWhilePaused(ctx, sess); err != nil {
			return total, err
		}
		if sess.stopped() {
			return total, nil
		}

		src, err := e.device.LoadBuffer(chunk.Bytes(), chunk.SampleRate)
		if err != nil {
			return total, e.fatal(fmt.Errorf("load buffer: %w", err))
		}
		pb, err := e.device.Play(src)
		if err != nil {
			_ = e.device.DisposeSource(src)
			return total, e.fatal(fmt.Errorf("play: %w", err))
		}
		sess.setActive(src, pb)

		// A stop can land between the check above and Play; the registered
		// handles make this halt reach the fresh playback.
		if sess.stopped() {
			sess.haltDevice(e.device)
			return total, nil
		}

		// Announce the unit when any of its batches reaches the device, so
		// a unit whose leading batch failed synthesis is still reported.
		if current.unitIndex != announced {
			announced = current.unitIndex
			e.activeIndex.Store(int64(current.unitIndex))
			e.indexB.Publish(current.unitIndex)
		}

		// Latency hiding: while the device plays the current chunk,
		// synthesize the next one on this goroutine.
		nextChunk, nextJob := e.nextChunk(sess, jobs, &next, voice, &total)

		if err := e.waitPlayback(ctx, sess); err != nil {
			return total, err
		}
		// Single-owner handoff: the finished chunk's source is disposed
		// before the next playback starts.
		sess.release(e.device)

		if sess.stopped() {
			// Stop already halted the device and moved status to ready.
			return total, nil
		}
		chunk, current = nextChunk, nextJob
	}

	e.machine.Transition(StatusReady)
	return total, nil
}

// nextChunk synthesizes jobs in order starting at *next until one produces
// audio, accumulating generated duration. Returns nil when the session is
// exhausted or stopped.
func (e *Engine) nextChunk(sess *playSession, jobs []job, next *int, voice string, total *time.Duration) (*AudioChunk, job) {
	for *next < len(jobs) && !sess.stopped() {
		j := jobs[*next]
		*next++
		chunk := e.adapter.generate(j.text, j.isPhonemes, voice, ClampRate(e.speed.Rate()))
		if chunk != nil {
			*total += chunk.Duration
			return chunk, j
		}
	}
	return nil, job{}
}

// waitPlayback blocks until the active playback finishes, polling at the
// configured interval so pause and stop are honored promptly. While paused
// the device's own pause primitive is already engaged; this loop just
// idles. Context cancellation counts as a stop.
func (e *Engine) waitPlayback(ctx context.Context, sess *playSession) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if sess.stopped() {
			return nil
		}
		if e.machine.Current() != StatusPaused && !sess.playing(e.device) {
			return nil
		}

		select {
		case <-ctx.Done():
			sess.stop.Store(true)
			sess.haltDevice(e.device)
			e.machine.Transition(StatusReady)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// waitWhilePaused idles while the engine is paused, without starting any
// new playback. Context cancellation counts as a stop.
func (e *Engine) waitWhilePaused(ctx context.Context, sess *playSession) error {
	if e.machine.Current() != StatusPaused {
		return nil
	}
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for e.machine.Current() == StatusPaused && !sess.stopped() {
		select {
		case <-ctx.Done():
			sess.stop.Store(true)
			sess.haltDevice(e.device)
			e.machine.Transition(StatusReady)
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// fatal handles a device-level failure: the session cannot continue, all
// pending resources are released and the engine requires re-initialization.
func (e *Engine) fatal(err error) error {
	e.logger.Error("session aborted", "error", err)

	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess != nil {
		sess.stop.Store(true)
		sess.haltDevice(e.device)
	}

	e.machine.Transition(StatusError)
	return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
}

func flatten(units []unit) []job {
	var jobs []job
	for _, u := range units {
		for _, b := range u.batches {
			jobs = append(jobs, job{
				unitIndex:  u.index,
				text:       b,
				isPhonemes: u.isPhonemes,
			})
		}
	}
	return jobs
}
