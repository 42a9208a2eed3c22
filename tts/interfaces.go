// Package tts drives continuous spoken narration of extracted page text.
// It batches phonemes to the synthesis model's token budget, overlaps
// synthesis of the next batch with playback of the current one, and exposes
// pause, resume, stop, speed control and per-sentence progress events.
package tts

// Phonemizer converts text to IPA phoneme strings. Initialize must be safe
// to call more than once. Phonemize returning an error (or an empty string)
// signals the engine to fall back to character-budget text chunking rather
// than aborting.
type Phonemizer interface {
	Initialize() error
	Phonemize(text string) (string, error)
}

// Synthesizer wraps the neural synthesis model. One call produces the audio
// for one bounded batch of phonemes or raw text. Implementations are not
// assumed safe for concurrent Synthesize calls; the engine serializes them.
type Synthesizer interface {
	// Initialize loads the voice and model. Failures are fatal to the
	// engine and surface from Engine.Initialize.
	Initialize(voicePath, modelPath string) error

	// Synthesize renders one batch. speed has already been clamped to
	// [0.5, 2.0] by the caller.
	Synthesize(input string, voice string, speed float64, isPhonemes bool) (*AudioChunk, error)

	// Available reports whether the model is loaded and usable.
	Available() bool
}

// Device is the audio output. Sources hold loaded PCM buffers; playbacks
// are in-flight play operations. Handles are opaque to the engine. The
// engine guarantees at most one active playback at a time and disposes
// every source it loads.
type Device interface {
	// LoadBuffer uploads little-endian 16-bit mono PCM and returns a
	// source handle.
	LoadBuffer(pcm []byte, sampleRate int) (int64, error)

	// Play starts a source and returns a playback handle.
	Play(source int64) (int64, error)

	// SetPaused suspends or resumes a playback at the device level.
	SetPaused(playback int64, paused bool) error

	// Stop halts a playback immediately.
	Stop(playback int64) error

	// Playing reports whether a playback is still producing audio.
	Playing(playback int64) bool

	// DisposeSource releases a source's buffer. Must be called for every
	// loaded source once its playback has finished or been stopped.
	DisposeSource(source int64) error
}
