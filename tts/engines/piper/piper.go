// Package piper runs Piper as a subprocess for offline synthesis, with an
// espeak-ng subprocess as the matching phonemizer. A fresh process per call
// with pre-configured stdin avoids the race where the child reads stdin
// before the parent writes it.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/lectern/tts"
)

const synthesisTimeout = 30 * time.Second

// Too-large output means a runaway process, not a long sentence.
const maxAudioBytes = 32 * 1024 * 1024

// Synthesizer invokes the piper binary with raw PCM output.
type Synthesizer struct {
	Binary     string // defaults to "piper"
	SampleRate int    // defaults to 22050, must match the voice model

	mu         sync.Mutex
	voicePath  string
	configPath string
	available  bool
}

// NewSynthesizer creates a Piper synthesizer with defaults.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Binary: "piper", SampleRate: 22050}
}

// Initialize checks the binary and voice model. voicePath is the .onnx
// voice model; modelPath is its .json config, derived from the voice path
// when empty.
func (s *Synthesizer) Initialize(voicePath, modelPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Binary == "" {
		s.Binary = "piper"
	}
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("piper binary not found: %w", err)
	}
	if voicePath == "" {
		return errors.New("voice model path is required")
	}
	if _, err := os.Stat(voicePath); err != nil {
		return fmt.Errorf("voice model not found: %w", err)
	}
	if modelPath == "" {
		modelPath = strings.TrimSuffix(voicePath, filepath.Ext(voicePath)) + ".json"
	}

	s.voicePath = voicePath
	s.configPath = modelPath
	s.available = true
	return nil
}

// Available reports whether Initialize succeeded.
func (s *Synthesizer) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Synthesize runs one piper process for one batch and returns its PCM.
// Phoneme input is wrapped in espeak phoneme markup so piper's embedded
// frontend passes it through instead of re-phonemizing.
func (s *Synthesizer) Synthesize(input, voice string, speed float64, isPhonemes bool) (*tts.AudioChunk, error) {
	s.mu.Lock()
	binary, voicePath, configPath := s.Binary, s.voicePath, s.configPath
	available := s.available
	rate := s.SampleRate
	s.mu.Unlock()

	if !available {
		return nil, tts.ErrEngineNotAvailable
	}
	if input == "" {
		return nil, errors.New("empty input")
	}

	// Piper's length scale is the inverse of the speed multiplier.
	lengthScale := 1.0 / speed

	args := []string{
		"--model", voicePath,
		"--config", configPath,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", lengthScale),
	}
	if voice != "" {
		args = append(args, "--speaker", voice)
	}

	if isPhonemes {
		input = "[[" + input + "]]"
	}

	ctx, cancel := context.WithTimeout(context.Background(), synthesisTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("synthesis timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("piper failed: %w, stderr: %s", err, stderr.String())
	}

	audio := stdout.Bytes()
	if len(audio) == 0 {
		return nil, fmt.Errorf("piper produced no audio, stderr: %s", stderr.String())
	}
	if len(audio) > maxAudioBytes {
		return nil, fmt.Errorf("piper output too large: %d bytes", len(audio))
	}

	return tts.NewAudioChunk(tts.PCMFromBytes(audio), rate), nil
}

// Phonemizer converts text to IPA with espeak-ng.
type Phonemizer struct {
	Binary string // defaults to "espeak-ng"
	Voice  string // defaults to "en-us"

	mu        sync.Mutex
	available bool
}

// NewPhonemizer creates an espeak-ng phonemizer with defaults.
func NewPhonemizer() *Phonemizer {
	return &Phonemizer{Binary: "espeak-ng", Voice: "en-us"}
}

// Initialize probes for the espeak-ng binary. Idempotent.
func (p *Phonemizer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.available {
		return nil
	}
	if p.Binary == "" {
		p.Binary = "espeak-ng"
	}
	if _, err := exec.LookPath(p.Binary); err != nil {
		return fmt.Errorf("espeak-ng binary not found: %w", err)
	}
	p.available = true
	return nil
}

// Phonemize converts text to one line of IPA. An error tells the engine to
// fall back to character-budget text chunking.
func (p *Phonemizer) Phonemize(text string) (string, error) {
	p.mu.Lock()
	binary, voice, available := p.Binary, p.Voice, p.available
	p.mu.Unlock()

	if !available {
		return "", errors.New("phonemizer not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), synthesisTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-q", "--ipa", "-v", voice, "--stdin")
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("espeak-ng failed: %w, stderr: %s", err, stderr.String())
	}

	// espeak emits one line per input clause; rejoin with spaces.
	return strings.Join(strings.Fields(stdout.String()), " "), nil
}
