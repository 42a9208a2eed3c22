package tts

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type stubSynth struct {
	chunk *AudioChunk
	err   error
	calls int
}

func (s *stubSynth) Initialize(voicePath, modelPath string) error { return nil }
func (s *stubSynth) Available() bool                              { return true }

func (s *stubSynth) Synthesize(input, voice string, speed float64, isPhonemes bool) (*AudioChunk, error) {
	s.calls++
	return s.chunk, s.err
}

func newTestAdapter(s *stubSynth) *synthAdapter {
	return &synthAdapter{synth: s, logger: log.New(io.Discard)}
}

func TestAdapterSkipsEmptyInput(t *testing.T) {
	s := &stubSynth{}
	a := newTestAdapter(s)

	for _, input := range []string{"", "   ", "\n\t"} {
		if got := a.generate(input, false, "voice", 1.0); got != nil {
			t.Errorf("generate(%q) = %v, want nil", input, got)
		}
	}
	if s.calls != 0 {
		t.Errorf("synthesizer called %d times for blank input", s.calls)
	}
}

func TestAdapterSoftensFailure(t *testing.T) {
	s := &stubSynth{err: errors.New("model exploded")}
	if got := newTestAdapter(s).generate("hello", false, "voice", 1.0); got != nil {
		t.Errorf("failed synthesis should yield nil, got %v", got)
	}
}

func TestAdapterDropsEmptyAudio(t *testing.T) {
	s := &stubSynth{chunk: &AudioChunk{SampleRate: 22050}}
	if got := newTestAdapter(s).generate("hello", false, "voice", 1.0); got != nil {
		t.Errorf("empty PCM should yield nil, got %v", got)
	}
}

func TestAdapterDerivesMissingDuration(t *testing.T) {
	s := &stubSynth{chunk: &AudioChunk{PCM: make([]int16, 22050), SampleRate: 22050}}
	got := newTestAdapter(s).generate("hello", true, "voice", 1.0)
	if got == nil {
		t.Fatal("expected a chunk")
	}
	if got.Duration != time.Second {
		t.Errorf("derived duration = %v, want 1s", got.Duration)
	}
}
