package tts

import (
	"testing"
	"time"
)

func TestNewAudioChunkDerivesDuration(t *testing.T) {
	c := NewAudioChunk(make([]int16, 22050), 22050)
	if c.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", c.Duration)
	}

	half := NewAudioChunk(make([]int16, 11025), 22050)
	if half.Duration != 500*time.Millisecond {
		t.Errorf("duration = %v, want 500ms", half.Duration)
	}
}

func TestPCMDuration(t *testing.T) {
	if got := PCMDuration(44100, 44100); got != time.Second {
		t.Errorf("PCMDuration(44100, 44100) = %v", got)
	}
	if got := PCMDuration(100, 0); got != 0 {
		t.Errorf("zero sample rate should yield 0, got %v", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	pcm := []int16{0, 1, -1, 32767, -32768, 256}
	c := NewAudioChunk(pcm, 22050)

	data := c.Bytes()
	if len(data) != len(pcm)*2 {
		t.Fatalf("encoded %d bytes, want %d", len(data), len(pcm)*2)
	}

	back := PCMFromBytes(data)
	if len(back) != len(pcm) {
		t.Fatalf("decoded %d samples, want %d", len(back), len(pcm))
	}
	for i := range pcm {
		if back[i] != pcm[i] {
			t.Errorf("sample %d = %d, want %d", i, back[i], pcm[i])
		}
	}
}

func TestPCMFromBytesIgnoresTrailingByte(t *testing.T) {
	if got := PCMFromBytes([]byte{0x01, 0x00, 0xff}); len(got) != 1 {
		t.Errorf("decoded %d samples from 3 bytes, want 1", len(got))
	}
}
