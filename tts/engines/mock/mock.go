// Package mock provides deterministic synthesis and phonemizer fakes for
// testing the narration pipeline without a model or audio hardware.
package mock

import (
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/lectern/tts"
)

// ErrPhonemizerUnavailable signals the engine to use text chunking.
var ErrPhonemizerUnavailable = errors.New("mock phonemizer unavailable")

// Synthesizer produces silence proportional to input length. One character
// maps to SamplesPerChar PCM samples, so tests can predict durations.
type Synthesizer struct {
	SampleRate     int
	SamplesPerChar int
	Delay          time.Duration // simulated model latency per call

	mu          sync.Mutex
	initialized bool
	initErr     error
	failNext    int
	calls       []Call
}

// Call records the arguments of one Synthesize invocation.
type Call struct {
	Input      string
	Voice      string
	Speed      float64
	IsPhonemes bool
}

// NewSynthesizer creates a mock with test-friendly defaults.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		SampleRate:     22050,
		SamplesPerChar: 32,
	}
}

// FailInitialize makes the next Initialize return err.
func (s *Synthesizer) FailInitialize(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = err
}

// FailNext makes the next n Synthesize calls fail.
func (s *Synthesizer) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Initialize marks the model loaded, or fails if configured to.
func (s *Synthesizer) Initialize(voicePath, modelPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initErr != nil {
		return s.initErr
	}
	s.initialized = true
	return nil
}

// Available reports whether Initialize succeeded.
func (s *Synthesizer) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Synthesize renders deterministic PCM for the input.
func (s *Synthesizer) Synthesize(input, voice string, speed float64, isPhonemes bool) (*tts.AudioChunk, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Input: input, Voice: voice, Speed: speed, IsPhonemes: isPhonemes})
	fail := s.failNext > 0
	if fail {
		s.failNext--
	}
	delay := s.Delay
	rate := s.SampleRate
	perChar := s.SamplesPerChar
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, errors.New("mock: synthesis failure")
	}

	pcm := make([]int16, len([]rune(input))*perChar)
	return tts.NewAudioChunk(pcm, rate), nil
}

// Calls returns a copy of the recorded invocations.
func (s *Synthesizer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Phonemizer maps text to itself, which is a valid phoneme string as far
// as token counting is concerned since letters are in the vocabulary.
// Setting Unavailable exercises the fallback chunking path.
type Phonemizer struct {
	Unavailable bool

	mu        sync.Mutex
	initCalls int
}

// Initialize succeeds unless the phonemizer is marked unavailable. Safe to
// call repeatedly.
func (p *Phonemizer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initCalls++
	if p.Unavailable {
		return ErrPhonemizerUnavailable
	}
	return nil
}

// InitCalls returns how many times Initialize ran.
func (p *Phonemizer) InitCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initCalls
}

// Phonemize returns the text unchanged.
func (p *Phonemizer) Phonemize(text string) (string, error) {
	if p.Unavailable {
		return "", ErrPhonemizerUnavailable
	}
	return text, nil
}
