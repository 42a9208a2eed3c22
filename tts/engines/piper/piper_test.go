package piper

import (
	"os/exec"
	"strings"
	"testing"
)

func TestSynthesizerRequiresInitialize(t *testing.T) {
	s := NewSynthesizer()
	if s.Available() {
		t.Error("synthesizer should not be available before Initialize")
	}
	if _, err := s.Synthesize("hello", "", 1.0, false); err == nil {
		t.Error("Synthesize before Initialize should fail")
	}
}

func TestSynthesizerInitializeMissingModel(t *testing.T) {
	if _, err := exec.LookPath("piper"); err != nil {
		t.Skip("piper binary not installed")
	}
	s := NewSynthesizer()
	if err := s.Initialize("/nonexistent/voice.onnx", ""); err == nil {
		t.Error("Initialize with missing voice model should fail")
	}
	if s.Available() {
		t.Error("failed Initialize should leave synthesizer unavailable")
	}
}

func TestSynthesizerInitializeMissingBinary(t *testing.T) {
	s := &Synthesizer{Binary: "piper-binary-that-does-not-exist"}
	if err := s.Initialize("voice.onnx", ""); err == nil {
		t.Error("Initialize with missing binary should fail")
	}
}

func TestPhonemizerRequiresInitialize(t *testing.T) {
	p := NewPhonemizer()
	if _, err := p.Phonemize("hello"); err == nil {
		t.Error("Phonemize before Initialize should fail")
	}
}

func TestPhonemizerInitializeMissingBinary(t *testing.T) {
	p := &Phonemizer{Binary: "espeak-binary-that-does-not-exist"}
	if err := p.Initialize(); err == nil {
		t.Error("Initialize with missing binary should fail")
	}
}

func TestPhonemize(t *testing.T) {
	p := NewPhonemizer()
	if err := p.Initialize(); err != nil {
		t.Skip("espeak-ng not installed")
	}
	// Idempotent.
	if err := p.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	out, err := p.Phonemize("hello world")
	if err != nil {
		t.Fatalf("Phonemize: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("expected non-empty phoneme output")
	}
	if strings.Contains(out, "\n") {
		t.Errorf("phoneme output should be a single line, got %q", out)
	}

	empty, err := p.Phonemize("   ")
	if err != nil {
		t.Fatalf("Phonemize blank: %v", err)
	}
	if empty != "" {
		t.Errorf("blank input should phonemize to empty string, got %q", empty)
	}
}
